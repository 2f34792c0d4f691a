package common

// Record keys of the two blobs the directory keeps in its key-value store.
const (
	AccountsKey = "auth_master_db"
	SessionKey  = "auth_master_session"
)

// Bootstrap administrator credentials written on first initialization.
const (
	BootstrapUsername = "admin"
	BootstrapSecret   = "admin123"
)
