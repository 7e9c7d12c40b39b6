// Package document implements document CRUD, signed download links, and the
// full-text search surface over the documents table. Everything here runs
// under the caller's scope; workspace visibility is the database policies'
// concern.
package document

import (
	"time"

	id "tome/pkg/domain"
)

// Document is a knowledge-base entry in a workspace. FileURL holds the
// storage key of the uploaded file ("" when the document is text-only) and
// must pass objstore.ExtractKey before any presigning.
type Document struct {
	ID          id.DocumentID
	WorkspaceID id.WorkspaceID
	UploaderID  id.UserID
	Title       string
	Content     string
	FileURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
