package httpapi

//ChangePasswordRequest is a request to change the admin password.
//The current password is given as the basic auth password.
type ChangePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
