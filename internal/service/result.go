package service

// Result is the outcome of an operation that reports success as data
// instead of an error. Message is safe to show to the end user.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(message string) Result { return Result{Success: true, Message: message} }
func fail(message string) Result { return Result{Success: false, Message: message} }

// User-facing messages.
const (
	MsgUserExists      = "User already exists. Please sign in instead."
	MsgEmailInUse      = "This email is already in use."
	MsgSignUpFailed    = "Failed to create an account."
	MsgSignUpOK        = "Account created successfully. Please sign in."
	MsgUserNotFound    = "User not found. Create an account instead."
	MsgSignInFailed    = "Failed to login."
	MsgSignInOK        = "Signed in successfully."
	MsgBadCredentials  = "Invalid credentials."
	MsgTokenIssued     = "ID token issued."
	MsgSignedOut       = "Signed out successfully."
	MsgSignOutFailed   = "Failed to sign out."
	MsgFeedbackMissing = "Feedback not found."
	MsgNotOwner        = "Unauthorized."
	MsgDeleteFailed    = "Failed to delete feedback."
	MsgDeleteOK        = "Feedback deleted successfully."
)
