// Package storage defines the page persistence abstraction and its drivers.
package storage

import "github.com/motioneffector/wiki/internal/models"

// Provider is the persistence contract the wiki service depends on. The
// service keeps the authoritative page table in memory; providers only
// durably mirror it.
type Provider interface {
	// Load returns the page with the given id, or os.ErrNotExist-wrapping
	// error (fs) / sql.ErrNoRows-wrapping error (sqlite) when absent.
	Load(id string) (*models.Page, error)
	// Save durably writes the page, replacing any previous version.
	Save(p *models.Page) error
	// Delete removes the page. Deleting an absent page is an error.
	Delete(id string) error
	// List returns every stored page.
	List() ([]*models.Page, error)
	// Close releases driver resources.
	Close() error
}
