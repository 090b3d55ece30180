package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/user"
)

// addUser creates a user of any role, admins included.
func (cli *commandLine) addUser(nu user.NewUser) error {
	ctx := context.Background()

	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return cli.describe(err)
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return cli.describe(err)
	}
	fmt.Printf("created %s %q (id: %d)\n", usr.Role, usr.Email, usr.ID)
	return nil
}

// describe flattens validation failures into a single readable error.
func (cli *commandLine) describe(err error) error {
	var flds map[string]string
	switch verr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		flds = core.TranslateErrors(verr, cli.translator)
	case *core.ValidationError:
		flds = verr.FieldMap()
	}
	if len(flds) == 0 {
		return err
	}

	names := lo.Keys(flds)
	sort.Strings(names)
	msgs := lo.Map(names, func(name string, _ int) string { return name + ": " + flds[name] })
	return errors.New(strings.Join(msgs, "; "))
}
