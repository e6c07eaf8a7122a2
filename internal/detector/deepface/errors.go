package deepface

import "errors"

var (
	ErrInvalidResponse = errors.New("invalid response from deepface")
	ErrNoFaceDetected  = errors.New("deepface could not detect a face")
)
