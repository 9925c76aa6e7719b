package landmark

// Registry maps every named anatomical point used for scoring to its
// landmark index. It is supplied as configuration so that a different
// landmark model can be mapped without touching the evaluators.
type Registry struct {
	RightEyeOuter int `json:"right_eye_outer" validate:"gte=0,lt=478"`
	RightEyeInner int `json:"right_eye_inner" validate:"gte=0,lt=478"`
	RightEyeUpper int `json:"right_eye_upper" validate:"gte=0,lt=478"`
	RightEyeLower int `json:"right_eye_lower" validate:"gte=0,lt=478"`
	LeftEyeOuter  int `json:"left_eye_outer" validate:"gte=0,lt=478"`
	LeftEyeInner  int `json:"left_eye_inner" validate:"gte=0,lt=478"`
	LeftEyeUpper  int `json:"left_eye_upper" validate:"gte=0,lt=478"`
	LeftEyeLower  int `json:"left_eye_lower" validate:"gte=0,lt=478"`

	RightBrow int `json:"right_brow" validate:"gte=0,lt=478"`
	LeftBrow  int `json:"left_brow" validate:"gte=0,lt=478"`

	NoseTip       int `json:"nose_tip" validate:"gte=0,lt=478"`
	NoseBridge    int `json:"nose_bridge" validate:"gte=0,lt=478"`
	RightNoseWing int `json:"right_nose_wing" validate:"gte=0,lt=478"`
	LeftNoseWing  int `json:"left_nose_wing" validate:"gte=0,lt=478"`

	RightCheek int `json:"right_cheek" validate:"gte=0,lt=478"`
	LeftCheek  int `json:"left_cheek" validate:"gte=0,lt=478"`

	RightMouth     int `json:"right_mouth" validate:"gte=0,lt=478"`
	LeftMouth      int `json:"left_mouth" validate:"gte=0,lt=478"`
	PhiltrumTop    int `json:"philtrum_top" validate:"gte=0,lt=478"`
	PhiltrumBottom int `json:"philtrum_bottom" validate:"gte=0,lt=478"`

	RightIrisCenter int    `json:"right_iris_center" validate:"gte=0,lt=478"`
	LeftIrisCenter  int    `json:"left_iris_center" validate:"gte=0,lt=478"`
	RightIrisRing   [4]int `json:"right_iris_ring" validate:"dive,gte=0,lt=478"`
	LeftIrisRing    [4]int `json:"left_iris_ring" validate:"dive,gte=0,lt=478"`
}

// Eye groups the four landmarks that describe one eye opening.
type Eye struct {
	Inner int
	Outer int
	Upper int
	Lower int
}

// DefaultRegistry returns the MediaPipe face mesh assignments.
func DefaultRegistry() Registry {
	return Registry{
		RightEyeOuter:   RightEyeOuter,
		RightEyeInner:   RightEyeInner,
		RightEyeUpper:   RightEyeUpper,
		RightEyeLower:   RightEyeLower,
		LeftEyeOuter:    LeftEyeOuter,
		LeftEyeInner:    LeftEyeInner,
		LeftEyeUpper:    LeftEyeUpper,
		LeftEyeLower:    LeftEyeLower,
		RightBrow:       RightBrow,
		LeftBrow:        LeftBrow,
		NoseTip:         NoseTip,
		NoseBridge:      NoseBridge,
		RightNoseWing:   RightNoseWing,
		LeftNoseWing:    LeftNoseWing,
		RightCheek:      RightCheek,
		LeftCheek:       LeftCheek,
		RightMouth:      RightMouth,
		LeftMouth:       LeftMouth,
		PhiltrumTop:     PhiltrumTop,
		PhiltrumBottom:  PhiltrumBottom,
		RightIrisCenter: RightIrisCenter,
		LeftIrisCenter:  LeftIrisCenter,
		RightIrisRing:   RightIrisRing,
		LeftIrisRing:    LeftIrisRing,
	}
}

// Eye returns the eye landmarks for the given side.
func (r Registry) Eye(side Side) Eye {
	if side == SideLeft {
		return Eye{Inner: r.LeftEyeInner, Outer: r.LeftEyeOuter, Upper: r.LeftEyeUpper, Lower: r.LeftEyeLower}
	}
	return Eye{Inner: r.RightEyeInner, Outer: r.RightEyeOuter, Upper: r.RightEyeUpper, Lower: r.RightEyeLower}
}

// Mouth returns the mouth-corner landmark for the given side.
func (r Registry) Mouth(side Side) int {
	if side == SideLeft {
		return r.LeftMouth
	}
	return r.RightMouth
}

// Brow returns the brow-centre landmark for the given side.
func (r Registry) Brow(side Side) int {
	if side == SideLeft {
		return r.LeftBrow
	}
	return r.RightBrow
}

// NoseWing returns the nose-wing landmark for the given side.
func (r Registry) NoseWing(side Side) int {
	if side == SideLeft {
		return r.LeftNoseWing
	}
	return r.RightNoseWing
}

// Cheek returns the default cheek landmark for the given side.
func (r Registry) Cheek(side Side) int {
	if side == SideLeft {
		return r.LeftCheek
	}
	return r.RightCheek
}
