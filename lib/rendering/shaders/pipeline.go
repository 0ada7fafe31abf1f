package shaders

import (
	"fmt"
	"slices"
	"strings"

	"github.com/SnowmanTackler/RtspLibrary/lib/rendering/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Names the image shaders must declare.
const (
	AttribPosition        = "position"
	AttribTexturePosition = "texturePosition"
	UniformImage          = "image"
	UniformProjection     = "matrixProjectionAndView"
)

type ShaderCompileError struct {
	Stage gpu.ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

type ShaderLinkError struct {
	Log string
	// Missing lists bindings the linked program does not expose.
	Missing []string
}

func (e *ShaderLinkError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("failed to link program: unresolved %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("failed to link program: %v", e.Log)
}

// Pipeline is a linked program together with the locations the draw call
// needs.
type Pipeline struct {
	dev gpu.Device

	Program               uint32
	AttribPosition        int32
	AttribTexturePosition int32
	UniformImage          int32
	UniformProjection     int32

	valid bool
}

// Build renders the embedded shader templates and compiles them.
func Build(dev gpu.Device, data *ShaderData) (*Pipeline, error) {
	vertexShader, fragmentShader, err := Sources(data)
	if err != nil {
		return nil, err
	}
	return Compile(dev, vertexShader, fragmentShader)
}

// Compile compiles and links the two sources and resolves the four
// bindings. Both shader objects are deleted before returning, whatever the
// outcome; on error no GL object is left behind.
func Compile(dev gpu.Device, vertexShaderSource, fragmentShaderSource string) (*Pipeline, error) {
	vertexShader, err := compileShader(dev, vertexShaderSource, gpu.VertexShader)
	if err != nil {
		return nil, err
	}

	fragmentShader, err := compileShader(dev, fragmentShaderSource, gpu.FragmentShader)
	if err != nil {
		dev.DeleteShader(vertexShader)
		return nil, err
	}

	program := dev.CreateProgram()
	dev.AttachShader(program, vertexShader)
	dev.AttachShader(program, fragmentShader)
	ok, logmsg := dev.LinkProgram(program)

	dev.DeleteShader(vertexShader)
	dev.DeleteShader(fragmentShader)

	if !ok {
		dev.DeleteProgram(program)
		return nil, &ShaderLinkError{Log: logmsg}
	}

	p := &Pipeline{
		dev:                   dev,
		Program:               program,
		AttribPosition:        dev.GetAttribLocation(program, AttribPosition),
		AttribTexturePosition: dev.GetAttribLocation(program, AttribTexturePosition),
		UniformImage:          dev.GetUniformLocation(program, UniformImage),
		UniformProjection:     dev.GetUniformLocation(program, UniformProjection),
	}

	var missing []string
	for name, loc := range map[string]int32{
		AttribPosition:        p.AttribPosition,
		AttribTexturePosition: p.AttribTexturePosition,
		UniformImage:          p.UniformImage,
		UniformProjection:     p.UniformProjection,
	} {
		if loc == gpu.NotFound {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		dev.DeleteProgram(program)
		slices.Sort(missing)
		return nil, &ShaderLinkError{Missing: missing}
	}

	p.valid = true
	return p, nil
}

func compileShader(dev gpu.Device, source string, stage gpu.ShaderStage) (uint32, error) {
	shader := dev.CreateShader(stage)
	ok, clog := dev.CompileShader(shader, source)
	if !ok {
		dev.DeleteShader(shader)
		return 0, &ShaderCompileError{Stage: stage, Log: clog}
	}
	return shader, nil
}

// Valid is false for a nil or released pipeline.
func (p *Pipeline) Valid() bool {
	return p != nil && p.valid
}

func (p *Pipeline) Use() {
	p.dev.UseProgram(p.Program)
}

// SetImageUnit points the image sampler at a texture unit.
func (p *Pipeline) SetImageUnit(unit int32) {
	p.dev.Uniform1i(p.UniformImage, unit)
}

func (p *Pipeline) SetProjection(m *mgl32.Mat4) {
	p.dev.UniformMatrix4fv(p.UniformProjection, (*[16]float32)(m))
}

// Release deletes the program. It is safe to call more than once.
func (p *Pipeline) Release() {
	if !p.Valid() {
		return
	}
	p.dev.DeleteProgram(p.Program)
	p.valid = false
	p.Program = 0
}
