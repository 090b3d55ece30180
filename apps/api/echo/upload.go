package echoapi

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/file"
)

const (
	uploadFormField = "file"

	// room for the multipart boundaries and part headers around the file itself
	multipartOverhead = 64 << 10
)

type uploadApi struct {
	svc *file.Service
}

func registerUploadAPI(g *echo.Group, svc *file.Service) {
	api := uploadApi{svc: svc}

	g.POST("", api.upload)
	g.GET("/:fileId", api.download)
}

// Handlers

func (api *uploadApi) upload(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile(uploadFormField)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: uploadFormField, Error: "this field is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer src.Close()

	f, err := api.svc.Upload(ctx.Request().Context(), usr.ID, src, fh.Filename, fh.Header.Get(echo.HeaderContentType))
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}
	return respond(ctx, http.StatusCreated, echo.Map{"fileId": f.ID})
}

func (api *uploadApi) download(ctx echo.Context) error {
	f, err := api.svc.Fetch(ctx.Request().Context(), ctx.Param("fileId"))
	if err != nil {
		return errors.Wrap(err, "fetching file")
	}

	header := ctx.Response().Header()
	header.Set(echo.HeaderContentType, f.ContentType)
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	http.ServeContent(ctx.Response(), ctx.Request(), f.Name, f.CreatedAt, f.Reader())
	return nil
}
