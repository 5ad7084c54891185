package api

// Status enumerates the backend's propagation states for a resource.
type Status string

const (
	// StatusNew indicates the backend has reserved the slot but not yet
	// begun processing.
	StatusNew Status = "new"
	// StatusPending indicates propagation is in progress.
	StatusPending Status = "pending"
	// StatusIdle indicates the backend is waiting on internal scheduling.
	StatusIdle Status = "idle"
	// StatusDone indicates the resource is fully propagated.
	StatusDone Status = "done"
	// StatusErrorUpload indicates the initial upload failed server-side.
	StatusErrorUpload Status = "error_upload"
	// StatusErrorEdit indicates an edit failed server-side.
	StatusErrorEdit Status = "error_edit"
	// StatusErrorDelete indicates a delete failed server-side.
	StatusErrorDelete Status = "error_delete"
	// StatusUnauthorized indicates the backend rejected the mutation's
	// authorization.
	StatusUnauthorized Status = "unauthorized"
)

// Terminal reports whether the status ends a propagation wait, either
// successfully (done) or with a failure.
func (s Status) Terminal() bool {
	return s == StatusDone || s.Failed()
}

// Failed reports whether the status is a terminal failure.
func (s Status) Failed() bool {
	switch s {
	case StatusErrorUpload, StatusErrorEdit, StatusErrorDelete, StatusUnauthorized:
		return true
	}
	return false
}
