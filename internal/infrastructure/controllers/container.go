package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/pyci/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewUpdateDepsController); err != nil {
		return err
	}
	if err := container.Provide(NewSetverController); err != nil {
		return err
	}
	if err := container.Provide(NewDocsIndexController); err != nil {
		return err
	}
	if err := container.Provide(NewAPIReferenceController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	updateDepsController *UpdateDepsController,
	setverController *SetverController,
	docsIndexController *DocsIndexController,
	apiReferenceController *APIReferenceController,
) *[]entities.Controller {
	return &[]entities.Controller{
		updateDepsController,
		setverController,
		docsIndexController,
		apiReferenceController,
	}
}
