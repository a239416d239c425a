package pipeline

// PermissionStatus is the microphone permission state reported by the
// platform before a recording may start.
type PermissionStatus int

const (
	PermissionGranted PermissionStatus = iota
	PermissionDenied
	PermissionUndetermined
)

// Permissions gates microphone access. Undetermined permission triggers
// a synchronous request; a denial aborts the toggle back to idle.
type Permissions interface {
	Microphone() PermissionStatus
	RequestMicrophone() bool
}

// grantedPermissions is the default on platforms where opening the
// capture device is itself the permission check.
type grantedPermissions struct{}

func (grantedPermissions) Microphone() PermissionStatus { return PermissionGranted }
func (grantedPermissions) RequestMicrophone() bool      { return true }
