package entities

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Event is one platform input event delivered to the guest.
// Exactly one of Window and Device is set. DeviceID belongs to Device and
// must be zero for window events, which carry their own device ids.
type Event struct {
	Window   WindowEvent
	DeviceID Device
	Device   DeviceEvent
}

// NewWindowEvent wraps a window sub-event.
func NewWindowEvent(ev WindowEvent) Event {
	return Event{Window: ev}
}

// NewDeviceEvent wraps a raw device sub-event from device id.
func NewDeviceEvent(id Device, ev DeviceEvent) Event {
	return Event{DeviceID: id, Device: ev}
}

// WindowEvent is a sub-event tied to the host window.
type WindowEvent interface {
	variant
	isWindowEvent()
}

// DeviceEvent is a raw hardware sub-event, delivered regardless of focus.
type DeviceEvent interface {
	variant
	isDeviceEvent()
}

// ElementState is the state of a key or button.
type ElementState string

const (
	Pressed  ElementState = "Pressed"
	Released ElementState = "Released"
)

// TouchPhase is the stage of a touch or scroll gesture.
type TouchPhase string

const (
	TouchStarted   TouchPhase = "Started"
	TouchMoved     TouchPhase = "Moved"
	TouchEnded     TouchPhase = "Ended"
	TouchCancelled TouchPhase = "Cancelled"
)

// Theme is the system window theme.
type Theme string

const (
	ThemeLight Theme = "Light"
	ThemeDark  Theme = "Dark"
)

// VirtualKeyCode is the semantic name of a key ("A", "Escape", "Numpad0", ...).
type VirtualKeyCode string

const (
	KeyEscape VirtualKeyCode = "Escape"
	KeyReturn VirtualKeyCode = "Return"
	KeySpace  VirtualKeyCode = "Space"
	KeyBack   VirtualKeyCode = "Back"
	KeyTab    VirtualKeyCode = "Tab"
	KeyLeft   VirtualKeyCode = "Left"
	KeyUp     VirtualKeyCode = "Up"
	KeyRight  VirtualKeyCode = "Right"
	KeyDown   VirtualKeyCode = "Down"
	KeyLShift VirtualKeyCode = "LShift"
	KeyRShift VirtualKeyCode = "RShift"
	KeyW      VirtualKeyCode = "W"
	KeyA      VirtualKeyCode = "A"
	KeyS      VirtualKeyCode = "S"
	KeyD      VirtualKeyCode = "D"
)

// KeyboardInput describes one key transition.
type KeyboardInput struct {
	Scancode       uint32          `json:"scancode"`
	State          ElementState    `json:"state"`
	VirtualKeycode *VirtualKeyCode `json:"virtual_keycode"`
}

// ModifiersState is the set of held modifier keys.
type ModifiersState struct {
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
	Logo  bool `json:"logo"`
}

// MouseButton names a mouse button. Code is only meaningful for "Other".
type MouseButton struct {
	Button string `json:"button"`
	Code   uint8  `json:"code,omitempty"`
}

var (
	MouseLeft   = MouseButton{Button: "Left"}
	MouseRight  = MouseButton{Button: "Right"}
	MouseMiddle = MouseButton{Button: "Middle"}
)

// OtherMouseButton returns the platform specific button code.
func OtherMouseButton(code uint8) MouseButton {
	return MouseButton{Button: "Other", Code: code}
}

// MouseScrollDelta is either a line delta or a pixel delta; exactly one is set.
type MouseScrollDelta struct {
	Line  *[2]float32 `json:"line,omitempty"`
	Pixel *[2]float64 `json:"pixel,omitempty"`
}

// CalibratedForce is a pressure reading normalised across devices.
type CalibratedForce struct {
	Force            float64  `json:"force"`
	MaxPossibleForce float64  `json:"max_possible_force"`
	AltitudeAngle    *float64 `json:"altitude_angle"`
}

// Force is either calibrated or normalised; exactly one is set.
type Force struct {
	Calibrated *CalibratedForce `json:"calibrated,omitempty"`
	Normalized *float64         `json:"normalized,omitempty"`
}

// Touch is a single finger sample. ID may be reused after TouchEnded.
type Touch struct {
	DeviceID         Device     `json:"device_id"`
	Phase            TouchPhase `json:"phase"`
	PhysicalLocation [2]float64 `json:"physical_location"`
	Force            *Force     `json:"force"`
	ID               uint64     `json:"id"`
}

type (
	WindowResized struct {
		PhysicalSize [2]uint32 `json:"physical_size"`
	}
	WindowMoved struct {
		PhysicalPosition [2]int32 `json:"physical_position"`
	}
	WindowCloseRequested    struct{}
	WindowDestroyed         struct{}
	WindowReceivedCharacter struct {
		Char rune `json:"char"`
	}
	WindowFocused struct {
		Focused bool `json:"focused"`
	}
	WindowKeyboardInput struct {
		DeviceID    Device        `json:"device_id"`
		Input       KeyboardInput `json:"input"`
		IsSynthetic bool          `json:"is_synthetic"`
	}
	WindowCursorMoved struct {
		DeviceID         Device     `json:"device_id"`
		PhysicalPosition [2]float64 `json:"physical_position"`
	}
	WindowCursorEntered struct {
		DeviceID Device `json:"device_id"`
	}
	WindowCursorLeft struct {
		DeviceID Device `json:"device_id"`
	}
	WindowMouseWheel struct {
		DeviceID Device           `json:"device_id"`
		Delta    MouseScrollDelta `json:"delta"`
		Phase    TouchPhase       `json:"phase"`
	}
	WindowMouseInput struct {
		DeviceID Device       `json:"device_id"`
		State    ElementState `json:"state"`
		Button   MouseButton  `json:"button"`
	}
	WindowTouchpadPressure struct {
		DeviceID Device  `json:"device_id"`
		Pressure float32 `json:"pressure"`
		Stage    int64   `json:"stage"`
	}
	WindowAxisMotion struct {
		DeviceID Device  `json:"device_id"`
		Axis     uint32  `json:"axis"`
		Value    float64 `json:"value"`
	}
	WindowTouch struct {
		Touch Touch `json:"touch"`
	}
	WindowScaleFactorChanged struct {
		ScaleFactor          float64   `json:"scale_factor"`
		NewInnerPhysicalSize [2]uint32 `json:"new_inner_physical_size"`
	}
	WindowThemeChanged struct {
		Theme Theme `json:"theme"`
	}
)

func (WindowResized) VariantName() string            { return "Resized" }
func (WindowMoved) VariantName() string              { return "Moved" }
func (WindowCloseRequested) VariantName() string     { return "CloseRequested" }
func (WindowDestroyed) VariantName() string          { return "Destroyed" }
func (WindowReceivedCharacter) VariantName() string  { return "ReceivedCharacter" }
func (WindowFocused) VariantName() string            { return "Focused" }
func (WindowKeyboardInput) VariantName() string      { return "KeyboardInput" }
func (WindowCursorMoved) VariantName() string        { return "CursorMoved" }
func (WindowCursorEntered) VariantName() string      { return "CursorEntered" }
func (WindowCursorLeft) VariantName() string         { return "CursorLeft" }
func (WindowMouseWheel) VariantName() string         { return "MouseWheel" }
func (WindowMouseInput) VariantName() string         { return "MouseInput" }
func (WindowTouchpadPressure) VariantName() string   { return "TouchpadPressure" }
func (WindowAxisMotion) VariantName() string         { return "AxisMotion" }
func (WindowTouch) VariantName() string              { return "Touch" }
func (WindowScaleFactorChanged) VariantName() string { return "ScaleFactorChanged" }
func (WindowThemeChanged) VariantName() string       { return "ThemeChanged" }

func (WindowResized) isWindowEvent()            {}
func (WindowMoved) isWindowEvent()              {}
func (WindowCloseRequested) isWindowEvent()     {}
func (WindowDestroyed) isWindowEvent()          {}
func (WindowReceivedCharacter) isWindowEvent()  {}
func (WindowFocused) isWindowEvent()            {}
func (WindowKeyboardInput) isWindowEvent()      {}
func (WindowCursorMoved) isWindowEvent()        {}
func (WindowCursorEntered) isWindowEvent()      {}
func (WindowCursorLeft) isWindowEvent()         {}
func (WindowMouseWheel) isWindowEvent()         {}
func (WindowMouseInput) isWindowEvent()         {}
func (WindowTouchpadPressure) isWindowEvent()   {}
func (WindowAxisMotion) isWindowEvent()         {}
func (WindowTouch) isWindowEvent()              {}
func (WindowScaleFactorChanged) isWindowEvent() {}
func (WindowThemeChanged) isWindowEvent()       {}

type (
	DeviceAdded       struct{}
	DeviceRemoved     struct{}
	DeviceMouseMotion struct {
		Delta [2]float64 `json:"delta"`
	}
	DeviceMouseWheel struct {
		Delta MouseScrollDelta `json:"delta"`
	}
	DeviceMotion struct {
		Axis  uint32  `json:"axis"`
		Value float64 `json:"value"`
	}
	DeviceButton struct {
		Button uint32       `json:"button"`
		State  ElementState `json:"state"`
	}
	DeviceKey struct {
		Input KeyboardInput `json:"input"`
	}
	DeviceModifiersChanged struct {
		Modifiers ModifiersState `json:"modifiers"`
	}
	DeviceText struct {
		Codepoint rune `json:"codepoint"`
	}
)

func (DeviceAdded) VariantName() string            { return "Added" }
func (DeviceRemoved) VariantName() string          { return "Removed" }
func (DeviceMouseMotion) VariantName() string      { return "MouseMotion" }
func (DeviceMouseWheel) VariantName() string       { return "MouseWheel" }
func (DeviceMotion) VariantName() string           { return "Motion" }
func (DeviceButton) VariantName() string           { return "Button" }
func (DeviceKey) VariantName() string              { return "Key" }
func (DeviceModifiersChanged) VariantName() string { return "ModifiersChanged" }
func (DeviceText) VariantName() string             { return "Text" }

func (DeviceAdded) isDeviceEvent()            {}
func (DeviceRemoved) isDeviceEvent()          {}
func (DeviceMouseMotion) isDeviceEvent()      {}
func (DeviceMouseWheel) isDeviceEvent()       {}
func (DeviceMotion) isDeviceEvent()           {}
func (DeviceButton) isDeviceEvent()           {}
func (DeviceKey) isDeviceEvent()              {}
func (DeviceModifiersChanged) isDeviceEvent() {}
func (DeviceText) isDeviceEvent()             {}

var windowEvents = newUnionCodec[WindowEvent]("WindowEvent",
	WindowResized{},
	WindowMoved{},
	WindowCloseRequested{},
	WindowDestroyed{},
	WindowReceivedCharacter{},
	WindowFocused{},
	WindowKeyboardInput{},
	WindowCursorMoved{},
	WindowCursorEntered{},
	WindowCursorLeft{},
	WindowMouseWheel{},
	WindowMouseInput{},
	WindowTouchpadPressure{},
	WindowAxisMotion{},
	WindowTouch{},
	WindowScaleFactorChanged{},
	WindowThemeChanged{},
)

var deviceEvents = newUnionCodec[DeviceEvent]("DeviceEvent",
	DeviceAdded{},
	DeviceRemoved{},
	DeviceMouseMotion{},
	DeviceMouseWheel{},
	DeviceMotion{},
	DeviceButton{},
	DeviceKey{},
	DeviceModifiersChanged{},
	DeviceText{},
)

// WindowEventNames lists every WindowEvent variant in declaration order.
func WindowEventNames() []string {
	return windowEvents.variantNames()
}

// DeviceEventNames lists every DeviceEvent variant in declaration order.
func DeviceEventNames() []string {
	return deviceEvents.variantNames()
}

// NewWindowEventKind returns the zero value of the named window sub-event.
func NewWindowEventKind(name string) (WindowEvent, bool) {
	return windowEvents.zero(name)
}

// NewDeviceEventKind returns the zero value of the named device sub-event.
func NewDeviceEventKind(name string) (DeviceEvent, bool) {
	return deviceEvents.zero(name)
}

const (
	eventTagWindow = "Window"
	eventTagDevice = "DeviceEvent"
)

var errEventShape = errors.New("event: exactly one of Window and Device must be set, and DeviceID only with Device")

type deviceEventWire struct {
	DeviceID Device              `json:"device_id"`
	Event    jsoniter.RawMessage `json:"event"`
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	switch {
	case e.Window != nil && e.Device == nil && e.DeviceID == 0:
		inner, err := windowEvents.marshal(e.Window)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]jsoniter.RawMessage{eventTagWindow: inner})
	case e.Device != nil && e.Window == nil:
		inner, err := deviceEvents.marshal(e.Device)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]deviceEventWire{
			eventTagDevice: {DeviceID: e.DeviceID, Event: inner},
		})
	default:
		return nil, errEventShape
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Event) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("event: expected variant object, got %s", preview(data))
	}
	name, raw, err := readTagged(data)
	if err != nil {
		return fmt.Errorf("event: %w", err)
	}

	switch name {
	case eventTagWindow:
		ev, err := windowEvents.unmarshal(raw)
		if err != nil {
			return err
		}
		*e = Event{Window: ev}
		return nil
	case eventTagDevice:
		var wire deviceEventWire
		if err := json.Unmarshal(raw, &wire); err != nil {
			return fmt.Errorf("event: %w", err)
		}
		ev, err := deviceEvents.unmarshal(wire.Event)
		if err != nil {
			return err
		}
		*e = Event{DeviceID: wire.DeviceID, Device: ev}
		return nil
	}
	return fmt.Errorf("event: unknown variant %q", name)
}
