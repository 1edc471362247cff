package entities

// Model is an opaque host-side handle to an uploaded model.
// The guest gets no validity guarantee beyond what the host tracks.
type Model uint64

// Entity is an opaque host-side handle to a scene graph node.
type Entity uint64

// Device is an opaque identifier of an input device.
type Device uint64

// Vec3 is a three component vector.
type Vec3 [3]float32

// Mat4 is a 4x4 matrix stored in column-major order.
type Mat4 [16]float32

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Fov holds the half-angles of a view frustum, in radians.
type Fov struct {
	Left  float32 `json:"left"`
	Right float32 `json:"right"`
	Up    float32 `json:"up"`
	Down  float32 `json:"down"`
}

// View is the pose and field of view of one eye or camera of a medium.
type View struct {
	Pose Mat4 `json:"pose"`
	Fov  Fov  `json:"fov"`
}

// Intersection is the closest hit reported by a ray trace.
type Intersection struct {
	Position Vec3    `json:"position"`
	Distance float32 `json:"distance"`
	Entity   Entity  `json:"entity"`
}
