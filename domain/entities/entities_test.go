package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func TestBase64ByteSlice_RoundTrip(t *testing.T) {
	raw := []byte{0, 1, 255, 128}
	b := NewBase64ByteSlice(raw)

	assert.Equal(t, raw, b.Bytes())
	assert.Equal(t, 4, b.Len())

	decoded := roundTrip(t, b)
	assert.Equal(t, raw, decoded.Bytes())
}

func TestBase64ByteSlice_Tampered(t *testing.T) {
	b := Base64ByteSlice("not base64!")

	_, err := b.Decode()
	require.Error(t, err)
	assert.Panics(t, func() { b.Bytes() })

	var out Base64ByteSlice
	assert.Error(t, json.Unmarshal([]byte(`"%%%"`), &out))
}

func TestCommand_RoundTrip(t *testing.T) {
	transform := Identity()
	kinds := []CommandKind{
		ModelCreateArgs{Data: NewBase64ByteSlice([]byte("gltf"))},
		EntityRootGetArgs{},
		EntityCreateArgs{},
		EntityParentSetArgs{Entity: 4, Parent: ptr(Entity(1))},
		EntityParentSetArgs{Entity: 4},
		EntityModelSetArgs{Entity: 4, Model: ptr(Model(9))},
		EntityTransformSetArgs{Entity: 4, Transform: &transform},
		GetViewOrientationArgs{},
		RayTraceArgs{Origin: Vec3{0, 1, 2}, Direction: Vec3{0, 0, -1}},
		ExitArgs{},
	}

	for i, kind := range kinds {
		t.Run(kind.VariantName(), func(t *testing.T) {
			cmd := Command{ID: uint64(i), Kind: kind}
			assert.Equal(t, cmd, roundTrip(t, cmd))
		})
	}
}

func TestCommand_UnitVariantEncoding(t *testing.T) {
	data, err := json.Marshal(Command{ID: 7, Kind: EntityCreateArgs{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"kind":"EntityCreate"}`, string(data))

	data, err = json.Marshal(Command{ID: 1, Kind: RayTraceArgs{Direction: Vec3{0, 0, 1}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"kind":{"RayTrace":{"origin":[0,0,0],"direction":[0,0,1]}}}`, string(data))
}

func TestCommand_DecodeUnitForms(t *testing.T) {
	for _, text := range []string{
		`{"id":3,"kind":"Exit"}`,
		`{"id":3,"kind":{"Exit":null}}`,
		`{"id":3,"kind":{"Exit":{}}}`,
	} {
		var cmd Command
		require.NoError(t, json.Unmarshal([]byte(text), &cmd), text)
		assert.Equal(t, Command{ID: 3, Kind: ExitArgs{}}, cmd)
	}
}

func TestCommand_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown variant", `{"id":1,"kind":"Teleport"}`},
		{"two tags", `{"id":1,"kind":{"Exit":null,"EntityCreate":null}}`},
		{"missing kind", `{"id":1}`},
		{"number kind", `{"id":1,"kind":5}`},
		{"payload required", `{"id":1,"kind":"RayTrace"}`},
		{"null payload", `{"id":1,"kind":{"ModelCreate":null}}`},
		{"bad base64", `{"id":1,"kind":{"ModelCreate":{"data":"***"}}}`},
		{"negative id", `{"id":-1,"kind":"Exit"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			assert.Error(t, json.Unmarshal([]byte(tt.text), &cmd))
		})
	}
}

func TestCommand_EncodeErrors(t *testing.T) {
	_, err := json.Marshal(Command{ID: 1})
	assert.Error(t, err)

	_, err = json.Marshal(Command{ID: 1, Kind: RayTraceArgs{Origin: Vec3{float32(math.NaN()), 0, 0}}})
	assert.Error(t, err)
}

func TestCommandResponse_RoundTrip(t *testing.T) {
	prev := Identity()
	kinds := []CommandResponseKind{
		ModelCreateResult{Model: 2},
		EntityRootGetResult{Root: 1},
		EntityCreateResult{Entity: 3},
		EntityParentSetResult{Previous: ptr(Entity(1))},
		EntityParentSetResult{},
		EntityModelSetResult{Previous: ptr(Model(5))},
		EntityTransformSetResult{Previous: &prev},
		GetViewOrientationResult{Mediums: [][]View{
			{{Pose: Identity(), Fov: Fov{Left: -0.7, Right: 0.7, Up: 0.6, Down: -0.6}}},
			nil,
		}},
		RayTraceResult{Intersection: &Intersection{Position: Vec3{1, 2, 3}, Distance: 4, Entity: 5}},
		RayTraceResult{},
		ExitResult{},
	}

	for i, kind := range kinds {
		t.Run(kind.VariantName(), func(t *testing.T) {
			resp := CommandResponse{CommandID: uint64(i), Kind: kind}
			assert.Equal(t, resp, roundTrip(t, resp))
		})
	}
}

func TestCommandResponse_Answers(t *testing.T) {
	cmd := Command{ID: 7, Kind: EntityCreateArgs{}}

	assert.True(t, CommandResponse{CommandID: 7, Kind: EntityCreateResult{Entity: 3}}.Answers(cmd))
	assert.False(t, CommandResponse{CommandID: 8, Kind: EntityCreateResult{Entity: 3}}.Answers(cmd))
	assert.False(t, CommandResponse{CommandID: 7, Kind: EntityRootGetResult{Root: 3}}.Answers(cmd))
	assert.False(t, CommandResponse{CommandID: 7}.Answers(cmd))
}

func TestVariantParity(t *testing.T) {
	commands := CommandVariantNames()
	responses := ResponseVariantNames()

	require.NotEmpty(t, commands)
	assert.ElementsMatch(t, commands, responses)

	seen := make(map[string]int)
	for _, name := range responses {
		seen[name]++
	}
	for _, name := range commands {
		assert.Equal(t, 1, seen[name], "response variants named %q", name)

		k, ok := NewCommandKind(name)
		require.True(t, ok)
		r, ok := NewCommandResponseKind(name)
		require.True(t, ok)
		assert.Equal(t, k.VariantName(), r.VariantName())
	}
}

func TestEvent_RoundTrip(t *testing.T) {
	key := KeyEscape
	angle := 0.5
	events := []Event{
		NewWindowEvent(WindowResized{PhysicalSize: [2]uint32{800, 600}}),
		NewWindowEvent(WindowMoved{PhysicalPosition: [2]int32{-10, 20}}),
		NewWindowEvent(WindowCloseRequested{}),
		NewWindowEvent(WindowDestroyed{}),
		NewWindowEvent(WindowReceivedCharacter{Char: 'é'}),
		NewWindowEvent(WindowFocused{Focused: true}),
		NewWindowEvent(WindowKeyboardInput{DeviceID: 1, Input: KeyboardInput{Scancode: 1, State: Pressed, VirtualKeycode: &key}}),
		NewWindowEvent(WindowCursorMoved{DeviceID: 1, PhysicalPosition: [2]float64{1.5, 2.5}}),
		NewWindowEvent(WindowCursorEntered{DeviceID: 1}),
		NewWindowEvent(WindowCursorLeft{DeviceID: 1}),
		NewWindowEvent(WindowMouseWheel{DeviceID: 1, Delta: MouseScrollDelta{Line: &[2]float32{0, -1}}, Phase: TouchMoved}),
		NewWindowEvent(WindowMouseInput{DeviceID: 1, State: Released, Button: OtherMouseButton(4)}),
		NewWindowEvent(WindowTouchpadPressure{DeviceID: 1, Pressure: 0.25, Stage: 2}),
		NewWindowEvent(WindowAxisMotion{DeviceID: 1, Axis: 3, Value: -0.5}),
		NewWindowEvent(WindowTouch{Touch: Touch{
			DeviceID:         2,
			Phase:            TouchStarted,
			PhysicalLocation: [2]float64{10, 20},
			Force:            &Force{Calibrated: &CalibratedForce{Force: 1, MaxPossibleForce: 2, AltitudeAngle: &angle}},
			ID:               11,
		}}),
		NewWindowEvent(WindowScaleFactorChanged{ScaleFactor: 2, NewInnerPhysicalSize: [2]uint32{1600, 1200}}),
		NewWindowEvent(WindowThemeChanged{Theme: ThemeDark}),
		NewDeviceEvent(5, DeviceAdded{}),
		NewDeviceEvent(5, DeviceRemoved{}),
		NewDeviceEvent(5, DeviceMouseMotion{Delta: [2]float64{1, -1}}),
		NewDeviceEvent(5, DeviceMouseWheel{Delta: MouseScrollDelta{Pixel: &[2]float64{3, 4}}}),
		NewDeviceEvent(5, DeviceMotion{Axis: 1, Value: 0.75}),
		NewDeviceEvent(5, DeviceButton{Button: 1, State: Pressed}),
		NewDeviceEvent(5, DeviceKey{Input: KeyboardInput{Scancode: 30, State: Released}}),
		NewDeviceEvent(5, DeviceModifiersChanged{Modifiers: ModifiersState{Shift: true, Logo: true}}),
		NewDeviceEvent(5, DeviceText{Codepoint: 'x'}),
	}

	for _, ev := range events {
		name := "Device"
		if ev.Window != nil {
			name = "Window/" + ev.Window.VariantName()
		} else {
			name += "/" + ev.Device.VariantName()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, ev, roundTrip(t, ev))
		})
	}
}

func TestEvent_WireShape(t *testing.T) {
	data, err := json.Marshal(NewWindowEvent(WindowCloseRequested{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Window":"CloseRequested"}`, string(data))

	data, err = json.Marshal(NewDeviceEvent(3, DeviceText{Codepoint: 'a'}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"DeviceEvent":{"device_id":3,"event":{"Text":{"codepoint":97}}}}`, string(data))
}

func TestEvent_Invalid(t *testing.T) {
	_, err := json.Marshal(Event{})
	assert.Error(t, err)

	_, err = json.Marshal(Event{Window: WindowDestroyed{}, Device: DeviceAdded{}})
	assert.Error(t, err)

	for _, text := range []string{
		`{}`,
		`{"Keyboard":"Pressed"}`,
		`{"Window":"Teleported"}`,
		`{"Window":"Added"}`,
		`{"DeviceEvent":{"device_id":1,"event":"Resized"}}`,
		`[]`,
	} {
		var ev Event
		assert.Error(t, json.Unmarshal([]byte(text), &ev), text)
	}
}

func TestEvent_WindowEventWithDeviceID(t *testing.T) {
	ev := Event{Window: WindowFocused{Focused: true}, DeviceID: 9}
	_, err := json.Marshal(ev)
	assert.ErrorIs(t, err, errEventShape)
}

func TestUnion_RepeatedTagRejected(t *testing.T) {
	for _, text := range []string{
		`{"Window":"Destroyed","Window":"CloseRequested"}`,
		`{"Window":"Destroyed","DeviceEvent":{"device_id":1,"event":"Added"}}`,
		`{"Window":{"Focused":{"focused":true},"Focused":{"focused":false}}}`,
		`{"DeviceEvent":{"device_id":1,"event":{"Text":{"codepoint":97},"Text":{"codepoint":98}}}}`,
	} {
		var ev Event
		assert.Error(t, json.Unmarshal([]byte(text), &ev), text)
	}

	var cmd Command
	err := json.Unmarshal([]byte(`{"id":1,"kind":{"Exit":null,"Exit":{}}}`), &cmd)
	assert.ErrorContains(t, err, "exactly one variant tag")
}

func TestEvent_VariantNames(t *testing.T) {
	assert.Len(t, WindowEventNames(), 17)
	assert.Len(t, DeviceEventNames(), 9)

	ev, ok := NewWindowEventKind("Touch")
	require.True(t, ok)
	assert.IsType(t, WindowTouch{}, ev)

	_, ok = NewDeviceEventKind("Touch")
	assert.False(t, ok)
}

func TestIO(t *testing.T) {
	io := NewIO([]byte("hello\n"), nil)
	assert.False(t, io.Empty())
	assert.Equal(t, []byte("hello\n"), roundTrip(t, io).Out.Bytes())
	assert.True(t, NewIO(nil, nil).Empty())
}
