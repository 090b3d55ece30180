package main

import (
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/activity"
	"github.com/devShreyas21/studentPortal/core/file"
	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
	"github.com/devShreyas21/studentPortal/core/user"
	"github.com/devShreyas21/studentPortal/storage/blob/bolt"
	"github.com/devShreyas21/studentPortal/storage/blob/s3"
	"github.com/devShreyas21/studentPortal/storage/database"
	"github.com/devShreyas21/studentPortal/storage/database/inmem"
	"github.com/devShreyas21/studentPortal/storage/database/sqlx"
)

type repositories struct {
	users       user.Repository
	projects    project.Repository
	submissions submission.Repository
	activity    activity.Repository
	close       func() error
}

func setUpRepositories(conf *core.Config) (*repositories, error) {
	switch conf.Storage.Repository {
	case "memory":
		db := inmemdb.Open()
		return &repositories{
			users:       inmemdb.NewUserRepository(db),
			projects:    inmemdb.NewProjectRepository(db),
			submissions: inmemdb.NewSubmissionRepository(db),
			activity:    inmemdb.NewActivityRepository(db),
			close:       func() error { return nil },
		}, nil

	case "postgres":
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db.DB, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &repositories{
			users:       sqlxrepos.NewUserRepository(db),
			projects:    sqlxrepos.NewProjectRepository(db),
			submissions: sqlxrepos.NewSubmissionRepository(db),
			activity:    sqlxrepos.NewActivityRepository(db),
			close:       db.Close,
		}, nil

	default:
		return nil, errors.Errorf("unknown repository %q", conf.Storage.Repository)
	}
}

func setUpFileStore(conf *core.Config) (file.Store, func() error, error) {
	noop := func() error { return nil }

	switch conf.Upload.Driver {
	case "memory":
		return inmemdb.NewFileStore(inmemdb.Open()), noop, nil

	case "bolt":
		store, err := boltblob.Open(conf.Upload.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case "s3":
		store, err := s3blob.New(conf.Upload)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	default:
		return nil, nil, errors.Errorf("unknown upload driver %q", conf.Upload.Driver)
	}
}
