package domain

// BoundingBox represents the face area, in the coordinate space of whoever produced it
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Scale maps the box from a srcW x srcH surface onto a dstW x dstH surface.
// A degenerate source surface leaves the box untouched.
func (b BoundingBox) Scale(srcW, srcH, dstW, dstH int) BoundingBox {
	if srcW <= 0 || srcH <= 0 {
		return b
	}
	sx := float64(dstW) / float64(srcW)
	sy := float64(dstH) / float64(srcH)
	return BoundingBox{
		X:      b.X * sx,
		Y:      b.Y * sy,
		Width:  b.Width * sx,
		Height: b.Height * sy,
	}
}

// Detection is one face found in one frame. Discarded every poll cycle.
type Detection struct {
	Box        BoundingBox `json:"box"`
	Descriptor Descriptor  `json:"-"`
}

// ClassKind is the face-count class of a detection result
type ClassKind int

const (
	ClassNone ClassKind = iota
	ClassSingle
	ClassMultiple
)

func (k ClassKind) String() string {
	switch k {
	case ClassSingle:
		return "single"
	case ClassMultiple:
		return "multiple"
	default:
		return "none"
	}
}

// Classification is {None} | {Single, Detection} | {Multiple, Count}.
// Build it with Classify; the zero value is None.
type Classification struct {
	kind      ClassKind
	detection Detection
	count     int
}

// Classify derives the classification from one tick's detections
func Classify(detections []Detection) Classification {
	switch len(detections) {
	case 0:
		return Classification{}
	case 1:
		return Classification{kind: ClassSingle, detection: detections[0], count: 1}
	default:
		return Classification{kind: ClassMultiple, count: len(detections)}
	}
}

func (c Classification) Kind() ClassKind {
	return c.kind
}

// Count is the number of faces seen
func (c Classification) Count() int {
	return c.count
}

// Single returns the detection when the kind is ClassSingle
func (c Classification) Single() (Detection, bool) {
	if c.kind != ClassSingle {
		return Detection{}, false
	}
	return c.detection, true
}
