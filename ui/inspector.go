package ui

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// EyeInfo is the data shown for the selected eye.
type EyeInfo struct {
	Index      int
	Phase      string
	Value      float64 // Openness, dips below zero on the close overshoot
	Force      float64
	Scale      float64
	Radius     float64
	SizeFactor float64
	Position   mgl64.Vec3 // Rest position, local frame
	StartMs    float64
	NowMs      float64
}

// EyePanel renders the eye inspector.
type EyePanel struct {
	renderer *Renderer
	desc     PanelDescriptor
}

// NewEyePanel creates the inspector panel.
func NewEyePanel() *EyePanel {
	return &EyePanel{renderer: NewRenderer(), desc: EyePanelDescriptor()}
}

// Draw renders the panel for info.
func (e *EyePanel) Draw(info EyeInfo, screenW, screenH int32) {
	e.renderer.DrawDescriptor(e.desc, info, screenW, screenH)
}

func eye(data any) EyeInfo {
	info, _ := data.(EyeInfo)
	return info
}

// EyePanelDescriptor describes the inspector layout.
func EyePanelDescriptor() PanelDescriptor {
	return PanelDescriptor{
		ID:     "eye",
		Title:  "Eye Inspector",
		Width:  260,
		Anchor: AnchorBottomRight,
		Sections: []SectionDescriptor{
			{
				ID: "identity",
				Fields: []FieldDescriptor{
					{ID: "index", Label: "Index", Widget: WidgetText,
						TextGetter: func(d any) string { return fmt.Sprintf("%d", eye(d).Index) }},
					{ID: "phase", Label: "Phase", Widget: WidgetText,
						TextGetter: func(d any) string { return eye(d).Phase }},
					{ID: "elapsed", Label: "Elapsed", Widget: WidgetText,
						Visible: func(d any) bool { return eye(d).Phase != "Idle" },
						TextGetter: func(d any) string {
							return fmt.Sprintf("%.0f ms", eye(d).NowMs-eye(d).StartMs)
						}},
				},
			},
			{
				ID:    "response",
				Title: "Response",
				Fields: []FieldDescriptor{
					{ID: "value", Label: "Openness", Widget: WidgetCenteredBar,
						Range:  FieldRange{Min: -0.2, Max: 1.2},
						Getter: func(d any) float32 { return float32(eye(d).Value) }},
					{ID: "force", Label: "Force", Widget: WidgetCenteredBar,
						Range:  FieldRange{Min: -0.2, Max: 1.2},
						Getter: func(d any) float32 { return float32(eye(d).Force) }},
					{ID: "scale", Label: "Scale", Widget: WidgetBar,
						Getter: func(d any) float32 { return float32(eye(d).Scale) }},
				},
			},
			{
				ID:    "layout",
				Title: "Layout",
				Fields: []FieldDescriptor{
					{ID: "radius", Label: "Radius", Widget: WidgetText, Format: "%.4f",
						Getter: func(d any) float32 { return float32(eye(d).Radius) }},
					{ID: "size", Label: "Size factor", Widget: WidgetText, Format: "%.3f",
						Getter: func(d any) float32 { return float32(eye(d).SizeFactor) }},
					{ID: "position", Label: "Position", Widget: WidgetText,
						TextGetter: func(d any) string {
							p := eye(d).Position
							return fmt.Sprintf("%.2f, %.2f, %.2f", p[0], p[1], p[2])
						}},
				},
			},
		},
	}
}
