package domain

import "encoding/json"

// Wire event names. Inbound events are parsed by the transport layer,
// outbound events are pushed through the Messenger.
const (
	EventCameraJoin   = "camera:join"
	EventCameraJoined = "camera:joined"
	EventCameraNew    = "camera:new"
	EventCameraReady  = "camera:ready"
	EventCameraStatus = "camera:status"
	EventCameraGone   = "camera:disconnected"

	EventDirectorJoin    = "broadcaster:join"
	EventDirectorCameras = "broadcaster:cameras"
	EventSetActiveCamera = "broadcaster:set-active-camera"
	EventDirectorMessage = "broadcaster:message"

	EventViewerJoin   = "viewer:join"
	EventViewerCount  = "viewer:count"
	EventActiveCamera = "active-camera-changed"

	EventOffer        = "webrtc:offer"
	EventAnswer       = "webrtc:answer"
	EventICECandidate = "webrtc:ice-candidate"

	EventMatchUpdate = "match:update"
)

type CameraJoinedPayload struct {
	CameraID ConnectionID `json:"cameraId"`
}

type CameraNewPayload struct {
	CameraID ConnectionID `json:"cameraId"`
	Name     string       `json:"name"`
	Operator string       `json:"operator"`
}

type CameraStatusPayload struct {
	CameraID ConnectionID `json:"cameraId"`
	Status   CameraStatus `json:"status"`
}

type CameraGonePayload struct {
	CameraID ConnectionID `json:"cameraId"`
}

type CameraRosterPayload struct {
	Cameras []CameraInfo `json:"cameras"`
}

type ActiveCameraPayload struct {
	CameraID ConnectionID `json:"cameraId"`
}

type ViewerCountPayload struct {
	StreamCode StreamCode `json:"streamCode"`
	Count      int        `json:"count"`
}

type MatchUpdatePayload struct {
	StreamCode StreamCode      `json:"streamCode"`
	Data       json.RawMessage `json:"data"`
}

// Forwarded signaling payloads. The relay never interprets the session
// description or candidate; From is stamped on delivery so the recipient can
// address its reply.

type OfferPayload struct {
	From  ConnectionID    `json:"from"`
	Offer json.RawMessage `json:"offer"`
}

type AnswerPayload struct {
	From   ConnectionID    `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

type ICECandidatePayload struct {
	From      ConnectionID    `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

type DirectorMessagePayload struct {
	From    ConnectionID    `json:"from"`
	Message json.RawMessage `json:"message"`
}
