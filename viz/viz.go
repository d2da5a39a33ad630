// Package viz renders a recorded toolpath in a window, replacing the
// teacher's per-frame NES texture blit with a static line-strip draw of
// the motion primitives a target.Recorder collected during translation.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/tkellerer/ncxlate/target"
)

const (
	vertexShader = `
  #version 330

  attribute vec2 position;
  uniform vec4 bounds; // minX, minY, maxX, maxY

  void main(void){
    float x = (position.x - bounds.x) / (bounds.z - bounds.x) * 2.0 - 1.0;
    float y = (position.y - bounds.y) / (bounds.w - bounds.y) * 2.0 - 1.0;
    gl_Position = vec4(x, y, 0.0, 1.0);
  }
  ` + "\x00"

	fragmentShader = `
  #version 330

  uniform vec3 lineColor;

  void main(void){
    gl_FragColor = vec4(lineColor, 1.0);
  }
  ` + "\x00"
)

// compileShader compiles a shader, identical in shape to the teacher's
// texture-pipeline shader compiler.
func compileShader(code string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	ccode := gl.Str(code)
	gl.ShaderSource(shader, 1, &ccode, nil)
	gl.CompileShader(shader)
	var result int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &result)
	if result == gl.FALSE {
		var length int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetShaderInfoLog(shader, length, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to compile shader: %v\n%v", code, log)
	}
	return shader, nil
}

func newProgram() (uint32, error) {
	vs, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	var result int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &result)
	if result == gl.FALSE {
		var length int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return program, nil
}

// point is one XY vertex of the flattened toolpath, tagged with whether it
// ends a rapid move. The draw loop in Show does not read the tag: it draws
// the whole path in a single color.
type point struct {
	x, y  float32
	rapid bool
}

// BuildPath turns a Recorder's events into a flattened 2D polyline: straight
// moves become a single segment, arcs become a chord approximation.
func BuildPath(events []target.Event) []point {
	var path []point
	var x, y float64
	path = append(path, point{float32(x), float32(y), false})

	for _, e := range events {
		switch e.Kind {
		case target.EventStraightMotion:
			if e.MachinePos[0] != nil {
				x = float64(*e.MachinePos[0]) / 1000
			}
			if e.MachinePos[1] != nil {
				y = float64(*e.MachinePos[1]) / 1000
			}
			path = append(path, point{float32(x), float32(y), e.Rapid})
		case target.EventCircleMotion:
			cx := x + float64(e.DxCenter)/1000
			cy := y + float64(e.DyCenter)/1000
			radius := math.Hypot(x-cx, y-cy)
			start := math.Atan2(y-cy, x-cx)
			sweep := float64(e.Sweep) / 1_000_000
			const segments = 32
			for i := 1; i <= segments; i++ {
				angle := start + sweep*float64(i)/segments
				path = append(path, point{
					float32(cx + radius*math.Cos(angle)),
					float32(cy + radius*math.Sin(angle)),
					false,
				})
			}
			x = cx + radius*math.Cos(start+sweep)
			y = cy + radius*math.Sin(start+sweep)
		}
	}
	return path
}

func bounds(path []point) (minX, minY, maxX, maxY float32) {
	if len(path) == 0 {
		return -1, -1, 1, 1
	}
	minX, minY = path[0].x, path[0].y
	maxX, maxY = path[0].x, path[0].y
	for _, p := range path[1:] {
		minX, maxX = minF32(minX, p.x), maxF32(maxX, p.x)
		minY, maxY = minF32(minY, p.y), maxF32(maxY, p.y)
	}
	if minX == maxX {
		minX, maxX = minX-1, maxX+1
	}
	if minY == maxY {
		minY, maxY = minY-1, maxY+1
	}
	// pad 5% so the path doesn't touch the window edge.
	padX, padY := (maxX-minX)*0.05, (maxY-minY)*0.05
	return minX - padX, minY - padY, maxX + padX, maxY + padY
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Show opens a window and draws the recorded toolpath until closed.
func Show(events []target.Event, width, height int) {
	if err := glfw.Init(); err != nil {
		glog.Fatalln(err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)

	window, err := glfw.CreateWindow(width, height, "ncxlate toolpath", nil, nil)
	if err != nil {
		glog.Fatalln(err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glog.Fatalln(err)
	}
	program, err := newProgram()
	if err != nil {
		glog.Fatalln(err)
	}
	gl.UseProgram(program)

	path := BuildPath(events)
	minX, minY, maxX, maxY := bounds(path)
	boundsLoc := gl.GetUniformLocation(program, gl.Str("bounds\x00"))
	colorLoc := gl.GetUniformLocation(program, gl.Str("lineColor\x00"))
	positionLoc := uint32(gl.GetAttribLocation(program, gl.Str("position\x00")))

	vertices := make([]float32, 0, len(path)*2)
	for _, p := range path {
		vertices = append(vertices, p.x, p.y)
	}

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(positionLoc)
	gl.VertexAttribPointer(positionLoc, 2, gl.FLOAT, false, 0, nil)

	for !window.ShouldClose() {
		gl.ClearColor(0.08, 0.08, 0.08, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.Uniform4f(boundsLoc, minX, minY, maxX, maxY)
		gl.Uniform3f(colorLoc, 0.2, 0.9, 0.3)
		gl.DrawArrays(gl.LINE_STRIP, 0, int32(len(path)))
		window.SwapBuffers()
		glfw.PollEvents()
	}
}
