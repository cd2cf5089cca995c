package applinks

// ResetInitializeGuard lets tests call Initialize more than once.
func ResetInitializeGuard() { initialized.Store(false) }
