package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	if err := container.Provide(NewUpdateDepsCommand); err != nil {
		return err
	}
	if err := container.Provide(NewSetverCommand); err != nil {
		return err
	}
	if err := container.Provide(NewDocsIndexCommand); err != nil {
		return err
	}
	if err := container.Provide(NewAPIReferenceCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *UpdateDepsCommand) UpdateDeps {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *SetverCommand) Setver {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *DocsIndexCommand) DocsIndex {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *APIReferenceCommand) APIReference {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
