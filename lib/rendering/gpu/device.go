// Package gpu describes the subset of the OpenGL API the viewer needs.
//
// The renderer only talks to a Device, so the GL backed implementation in
// package gldevice can be swapped for the recording fake in gputest when no
// context is available.
package gpu

// Enum values match the OpenGL constants so gldevice can pass them through.
type PixelFormat uint32

const (
	Luminance PixelFormat = 0x1909
	Red       PixelFormat = 0x1903
	RGB       PixelFormat = 0x1907
	RGBA      PixelFormat = 0x1908
)

func (f PixelFormat) String() string {
	switch f {
	case Luminance:
		return "LUMINANCE"
	case Red:
		return "RED"
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	default:
		return "UNKNOWN"
	}
}

type PixelType uint32

const (
	UnsignedByte PixelType = 0x1401
)

type ShaderStage uint32

const (
	FragmentShader ShaderStage = 0x8B30
	VertexShader   ShaderStage = 0x8B31
)

func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return "unknown"
	}
}

type Filter int32

const (
	Nearest Filter = 0x2600
	Linear  Filter = 0x2601
)

type DrawMode uint32

const (
	Triangles     DrawMode = 0x0004
	TriangleStrip DrawMode = 0x0005
)

// ErrorCode is what glGetError reports.
type ErrorCode uint32

const (
	NoError          ErrorCode = 0
	InvalidEnum      ErrorCode = 0x0500
	InvalidValue     ErrorCode = 0x0501
	InvalidOperation ErrorCode = 0x0502
	OutOfMemory      ErrorCode = 0x0505
)

func (e ErrorCode) String() string {
	switch e {
	case NoError:
		return "GL_NO_ERROR"
	case InvalidEnum:
		return "GL_INVALID_ENUM"
	case InvalidValue:
		return "GL_INVALID_VALUE"
	case InvalidOperation:
		return "GL_INVALID_OPERATION"
	case OutOfMemory:
		return "GL_OUT_OF_MEMORY"
	default:
		return "GL_UNKNOWN_ERROR"
	}
}

// NotFound is returned by location lookups for names the linker dropped.
const NotFound int32 = -1

type Device interface {
	ClearColor(r, g, b, a float32)
	Clear()
	DisableDepthTest()
	Viewport(x, y, width, height int32)
	// GetError returns and resets the oldest pending error flag.
	GetError() ErrorCode

	CreateShader(stage ShaderStage) uint32
	// CompileShader uploads source into shader and compiles it. It reports
	// whether compilation succeeded along with the info log.
	CompileShader(shader uint32, source string) (bool, string)
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	// LinkProgram reports whether linking succeeded along with the info log.
	LinkProgram(program uint32) (bool, string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	GetAttribLocation(program uint32, name string) int32
	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	UniformMatrix4fv(location int32, m *[16]float32)

	GenTexture() uint32
	DeleteTexture(texture uint32)
	// ActiveTexture selects texture unit n (0 based).
	ActiveTexture(unit uint32)
	BindTexture2D(texture uint32)
	SetTextureParameters(filter Filter)
	TexImage2D(width, height int32, format PixelFormat, typ PixelType, data []byte)
	TexSubImage2D(width, height int32, format PixelFormat, typ PixelType, data []byte)

	GenVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	// StreamArrayBuffer binds buffer as the array buffer and replaces its
	// contents with data.
	StreamArrayBuffer(buffer uint32, data []float32)
	EnableVertexAttribArray(location uint32)
	DisableVertexAttribArray(location uint32)
	// VertexAttribPointer points location at the currently bound array buffer.
	VertexAttribPointer(location uint32, size int32, stride int32, offset int)
	DrawArrays(mode DrawMode, first, count int32)
}
