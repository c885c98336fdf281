package dto

// Capture actions accepted by the launch endpoint.
const (
	ActionChooseImage = "choose_image"
	ActionTakePhoto   = "take_photo"
)

type LaunchRequest struct {
	Action string `json:"action" validate:"required,oneof=choose_image take_photo"`
}

type LaunchResponse struct {
	RequestCode int    `json:"requestCode"`
	SavePath    string `json:"savePath,omitempty"`
}

// CaptureResult is what the viewer reports back once the launched facility
// finishes. For take-photo requests the photo bytes travel in the body.
type CaptureResult struct {
	RequestCode int    `validate:"oneof=1001 1002"`
	OK          bool
	URI         string `validate:"required_if=RequestCode 1001 OK true"`
}
