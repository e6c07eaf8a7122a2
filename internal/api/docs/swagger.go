package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// StateResponse represents the station snapshot used to bootstrap a UI
type StateResponse struct {
	SessionID      string           `json:"sessionId" example:"550e8400-e29b-41d4-a716-446655440000"`
	Camera         string           `json:"camera" example:"playing"`
	Identifier     string           `json:"identifier" example:"alice"`
	Classification string           `json:"classification" example:"single"`
	FaceCount      int              `json:"faceCount" example:"1"`
	Decision       DecisionResponse `json:"decision"`
	SubmitEnabled  bool             `json:"submitEnabled" example:"true"`
	Pipeline       string           `json:"pipeline" example:"idle"`
	ConflictPolicy string           `json:"conflictPolicy" example:"confirm"`
	StartedAt      string           `json:"startedAt" example:"2024-01-01T00:00:00Z"`
}

// DecisionResponse represents the enrollment gate verdict
type DecisionResponse struct {
	CanEnroll bool   `json:"canEnroll" example:"true"`
	Reason    string `json:"reason" example:"Ready to enroll"`
}

// CameraResponse represents the camera state after a camera action
type CameraResponse struct {
	State string `json:"state" example:"playing"`
}

// IdentifierRequest represents the identifier field update
type IdentifierRequest struct {
	Identifier string `json:"identifier" example:"alice"`
}

// EnrollRequest represents an enrollment request
type EnrollRequest struct {
	Identifier string `json:"identifier,omitempty" example:"alice"`
	Overwrite  bool   `json:"overwrite" example:"false"`
}

// FaceResponse represents one enrolled face
type FaceResponse struct {
	ID            string `json:"id" example:"alice"`
	RegistryID    string `json:"registryId,omitempty" example:"7d444840-9dc0-11d1-b245-5ffdce74fad2"`
	ImageSnapshot string `json:"imageUrl,omitempty" example:"data:image/png;base64,iVBORw0KGgo="`
	CreatedAt     string `json:"timestamp" example:"2024-01-01T00:00:00.000Z"`
}

// FacesResponse represents the enrolled list, newest first
type FacesResponse struct {
	Faces []FaceResponse `json:"faces"`
	Total int            `json:"total" example:"1"`
}

// HealthResponse represents the health and readiness probes
type HealthResponse struct {
	Status  string            `json:"status" example:"ok"`
	Version string            `json:"version,omitempty" example:"0.1.0"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

var internalError = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Rekko Enrollment Station API",
		Version:     "v1.0.0",
		Description: "Operator API of a face enrollment station: camera control, enrollment gate, enrollment submission and the local list of enrolled faces. Live updates are streamed on /v1/ws.",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// GET /v1/state
		endpoint.New(
			endpoint.GET,
			"/state",
			endpoint.WithTags("Station"),
			endpoint.WithSummary("Station snapshot"),
			endpoint.WithDescription("Returns camera state, identifier, current classification, gate decision and pipeline state"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StateResponse{}, "200", "OK"),
			}),
		),

		// POST /v1/camera/start
		endpoint.New(
			endpoint.POST,
			"/camera/start",
			endpoint.WithTags("Camera"),
			endpoint.WithSummary("Start the camera"),
			endpoint.WithDescription("Acquires the camera and starts the detection loop"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraResponse{}, "200", "Camera started"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CAMERA_PERMISSION_DENIED", Message: "Camera access was denied"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "CAMERA_UNAVAILABLE", Message: "Camera could not be started"}, "503", "Service Unavailable"),
			}),
		),

		// POST /v1/camera/stop
		endpoint.New(
			endpoint.POST,
			"/camera/stop",
			endpoint.WithTags("Camera"),
			endpoint.WithSummary("Stop the camera"),
			endpoint.WithDescription("Stops the detection loop, clears the overlay and releases the camera. A running enrollment completes."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraResponse{}, "200", "Camera stopped"),
			}),
			endpoint.WithErrors([]response.Response{internalError}),
		),

		// POST /v1/camera/toggle
		endpoint.New(
			endpoint.POST,
			"/camera/toggle",
			endpoint.WithTags("Camera"),
			endpoint.WithSummary("Toggle the camera"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraResponse{}, "200", "Camera toggled"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CAMERA_PERMISSION_DENIED", Message: "Camera access was denied"}, "403", "Forbidden"),
			}),
		),

		// PUT /v1/identifier
		endpoint.New(
			endpoint.PUT,
			"/identifier",
			endpoint.WithTags("Station"),
			endpoint.WithSummary("Set the identifier"),
			endpoint.WithDescription("Updates the identifier field and returns the resulting gate decision"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(IdentifierRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DecisionResponse{}, "200", "OK"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
			}),
		),

		// POST /v1/enrollments
		endpoint.New(
			endpoint.POST,
			"/enrollments",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Enroll the face in view"),
			endpoint.WithDescription("Re-detects the face, validates that exactly one face is visible and submits its descriptor to the registry. With the confirm conflict policy an enrolled identifier is rejected with 409 until overwrite is true."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(EnrollRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FaceResponse{}, "201", "Face enrolled"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FACE_ALREADY_EXISTS", Message: "Identifier is already enrolled, confirm to overwrite it"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "ENROLLMENT_IN_PROGRESS", Message: "An enrollment is already being processed"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected, face the camera and retry"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "IDENTIFIER_REQUIRED", Message: "Enter an identifier"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "REGISTRY_ERROR", Message: "The registry request failed, please retry"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "DETECTOR_FAILED", Message: "Face detection failed, please retry"}, "503", "Service Unavailable"),
			}),
		),

		// GET /v1/faces
		endpoint.New(
			endpoint.GET,
			"/faces",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("List enrolled faces"),
			endpoint.WithDescription("Lists the faces enrolled from this station, newest first"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FacesResponse{}, "200", "OK"),
			}),
			endpoint.WithErrors([]response.Response{internalError}),
		),

		// DELETE /v1/faces/:id
		endpoint.New(
			endpoint.DELETE,
			"/faces/{id}",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Remove an enrolled face"),
			endpoint.WithDescription("Deletes the face from the registry and from the local list"),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Enrolled identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Face removed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FACE_NOT_FOUND", Message: "Face not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "REGISTRY_ERROR", Message: "The registry request failed, please retry"}, "502", "Bad Gateway"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
