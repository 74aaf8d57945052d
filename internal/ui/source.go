package ui

import (
	"errors"
	"fmt"

	"github.com/clinicdesk/clinicweek/internal/agenda"
	"github.com/clinicdesk/clinicweek/internal/clinic"
	"github.com/clinicdesk/clinicweek/internal/config"
	"github.com/clinicdesk/clinicweek/internal/db"
)

var errLocalOnly = errors.New("this command needs the local store (storage.source = \"local\")")

// ensureSource opens the configured calendar source once.
func (a *App) ensureSource() error {
	if a.source != nil {
		return nil
	}

	loc, err := a.config.Location()
	if err != nil {
		return err
	}

	switch a.config.Storage.Source {
	case config.SourceAPI:
		timeout, err := a.config.Timeout()
		if err != nil {
			return err
		}
		client, err := clinic.New(clinic.Options{
			BaseURL:  a.config.API.BaseURL,
			Token:    a.config.API.Token,
			Timeout:  timeout,
			Location: loc,
			Logger:   a.logger,
		})
		if err != nil {
			return fmt.Errorf("creating clinic client: %w", err)
		}
		a.source = client
	default:
		store, err := db.New(a.config.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("opening local store: %w", err)
		}
		store.SetLocation(loc)
		a.source = store
	}

	a.logger.Debug().Str("source", a.config.Storage.Source).Msg("calendar source opened")
	return nil
}

// loader returns an agenda loader for the configured session.
func (a *App) loader() (*agenda.Loader, error) {
	if err := a.ensureSource(); err != nil {
		return nil, err
	}
	return agenda.NewLoader(a.source, a.config.CalendarSession(), a.logger), nil
}

// localStore returns the local store, or errLocalOnly.
func (a *App) localStore() (*db.SQLite, error) {
	if err := a.ensureSource(); err != nil {
		return nil, err
	}
	store, ok := a.source.(*db.SQLite)
	if !ok {
		return nil, errLocalOnly
	}
	return store, nil
}
