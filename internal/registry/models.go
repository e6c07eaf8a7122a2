package registry

// Action is the registry operation named in the request body
type Action string

const (
	ActionCreateFace Action = "createFace"
	ActionDeleteFace Action = "deleteFace"
)

// Request is the body POSTed to the registry endpoint.
// Descriptor holds the JSON-encoded numeric array as a string.
type Request struct {
	Action     Action `json:"action"`
	MemberID   string `json:"memberId"`
	Descriptor string `json:"descriptor,omitempty"`
}

// Response is the registry reply. A non-2xx status or Error=true is a failure.
type Response struct {
	ID      string `json:"id,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
