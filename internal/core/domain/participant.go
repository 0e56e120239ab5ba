package domain

import "time"

type StreamCode string
type ConnectionID string

type CameraStatus string

const (
	CameraStatusConnecting CameraStatus = "connecting"
	CameraStatusLive       CameraStatus = "live"
)

// Camera is one candidate video feed for a broadcast. Its ID doubles as the
// addressable identity used by peers when exchanging signaling payloads.
type Camera struct {
	ID         ConnectionID
	StreamCode StreamCode
	Name       string
	Operator   string
	Status     CameraStatus
	JoinedAt   time.Time
}

// Director selects which camera feed is currently on-air for a broadcast.
// ActiveCameraID is empty until the first switch and is never cleared
// afterwards, only overwritten.
type Director struct {
	ID             ConnectionID
	StreamCode     StreamCode
	ActiveCameraID ConnectionID
	JoinedAt       time.Time
}

// Viewer consumes the active feed and broadcast-wide state updates. Viewers
// are never mutated after creation.
type Viewer struct {
	ID         ConnectionID
	StreamCode StreamCode
	JoinedAt   time.Time
}

// CameraInfo is the roster snapshot entry handed to a joining director.
type CameraInfo struct {
	ID       ConnectionID `json:"cameraId"`
	Name     string       `json:"name"`
	Operator string       `json:"operator"`
	Status   CameraStatus `json:"status"`
}

func (c *Camera) Info() CameraInfo {
	return CameraInfo{
		ID:       c.ID,
		Name:     c.Name,
		Operator: c.Operator,
		Status:   c.Status,
	}
}
