// Package gputest provides a recording gpu.Device for tests that run without
// a GL context.
//
// Shader compilation is simulated: a source compiles when it has a
// "#version" line, a main function and balanced braces. Attribute and
// uniform locations are handed out for every "in" declaration of the vertex
// stage and every "uniform" declaration of either stage, in source order.
package gputest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SnowmanTackler/RtspLibrary/lib/rendering/gpu"
)

type DrawCall struct {
	Mode    gpu.DrawMode
	First   int32
	Count   int32
	Program uint32
	Texture uint32
	// Positions and TexCoords hold the array buffer contents bound to the
	// program's attributes at the time of the call.
	Positions []float32
	TexCoords []float32
}

type TexUpload struct {
	Texture uint32
	Width   int32
	Height  int32
	Format  gpu.PixelFormat
	Type    gpu.PixelType
	Len     int
	Full    bool
}

type shader struct {
	stage    gpu.ShaderStage
	source   string
	compiled bool
}

type program struct {
	shaders  []uint32
	linked   bool
	attribs  map[string]int32
	uniforms map[string]int32
}

type attribPointer struct {
	buffer uint32
	size   int32
}

type Device struct {
	ClearColour  [4]float32
	Clears       int
	DepthTest    bool
	ViewportRect [4]int32

	Draws   []DrawCall
	Uploads []TexUpload
	// Uniforms holds the last value set per location of the current program.
	Matrices map[int32][16]float32
	Ints     map[int32]int32

	// FailTexImage makes the next TexImage2D call raise this error and
	// leave the texture untouched.
	FailTexImage gpu.ErrorCode
	// CompileLog is reported for failed compilations.
	CompileLog string
	// FailStage makes every compilation of that stage fail, whatever the
	// source. Zero disables it.
	FailStage gpu.ShaderStage

	// StuckError, when set, is returned by every GetError call, like a
	// driver that never clears its flag.
	StuckError gpu.ErrorCode
	// ErrorPolls counts GetError calls.
	ErrorPolls int

	// DoubleDeletes counts deletions of handles that are not alive.
	DoubleDeletes int

	nextID uint32
	errs   []gpu.ErrorCode

	shaders  map[uint32]*shader
	programs map[uint32]*program
	textures map[uint32]bool
	buffers  map[uint32][]float32
	vaos     map[uint32]bool

	activeUnit   uint32
	boundTexture uint32
	boundBuffer  uint32
	boundVAO     uint32
	curProgram   uint32
	enabled      map[uint32]bool
	pointers     map[uint32]attribPointer
}

var _ gpu.Device = (*Device)(nil)

func New() *Device {
	return &Device{
		DepthTest: true,
		Matrices:  make(map[int32][16]float32),
		Ints:      make(map[int32]int32),
		shaders:   make(map[uint32]*shader),
		programs:  make(map[uint32]*program),
		textures:  make(map[uint32]bool),
		buffers:   make(map[uint32][]float32),
		vaos:      make(map[uint32]bool),
		enabled:   make(map[uint32]bool),
		pointers:  make(map[uint32]attribPointer),
	}
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) raise(code gpu.ErrorCode) {
	d.errs = append(d.errs, code)
}

// Live reports the number of shader, program, texture, buffer and vertex
// array objects that have not been deleted.
func (d *Device) Live() int {
	return len(d.shaders) + len(d.programs) + len(d.textures) + len(d.buffers) + len(d.vaos)
}

func (d *Device) LiveTextures() int { return len(d.textures) }

func (d *Device) LivePrograms() int { return len(d.programs) }

func (d *Device) LiveShaders() int { return len(d.shaders) }

func (d *Device) BoundTexture() uint32 { return d.boundTexture }

func (d *Device) CurrentProgram() uint32 { return d.curProgram }

// FullUploads counts TexImage2D calls that succeeded.
func (d *Device) FullUploads() int {
	n := 0
	for _, u := range d.Uploads {
		if u.Full {
			n++
		}
	}
	return n
}

// SubUploads counts TexSubImage2D calls.
func (d *Device) SubUploads() int {
	return len(d.Uploads) - d.FullUploads()
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.ClearColour = [4]float32{r, g, b, a}
}

func (d *Device) Clear() {
	d.Clears++
}

func (d *Device) DisableDepthTest() {
	d.DepthTest = false
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.ViewportRect = [4]int32{x, y, width, height}
}

func (d *Device) GetError() gpu.ErrorCode {
	d.ErrorPolls++
	if d.StuckError != gpu.NoError {
		return d.StuckError
	}
	if len(d.errs) == 0 {
		return gpu.NoError
	}
	code := d.errs[0]
	d.errs = d.errs[1:]
	return code
}

func (d *Device) CreateShader(stage gpu.ShaderStage) uint32 {
	id := d.id()
	d.shaders[id] = &shader{stage: stage}
	return id
}

func (d *Device) CompileShader(id uint32, source string) (bool, string) {
	s, ok := d.shaders[id]
	if !ok {
		d.raise(gpu.InvalidValue)
		return false, ""
	}
	s.source = source
	s.compiled = strings.Contains(source, "#version") &&
		strings.Contains(source, "void main") &&
		strings.Count(source, "{") == strings.Count(source, "}") &&
		s.stage != d.FailStage
	if !s.compiled {
		msg := d.CompileLog
		if msg == "" {
			msg = fmt.Sprintf("ERROR: 0:1: '%s' : syntax error", s.stage)
		}
		return false, msg
	}
	return true, ""
}

func (d *Device) DeleteShader(id uint32) {
	if _, ok := d.shaders[id]; !ok {
		d.DoubleDeletes++
		return
	}
	delete(d.shaders, id)
}

func (d *Device) CreateProgram() uint32 {
	id := d.id()
	d.programs[id] = &program{}
	return id
}

func (d *Device) AttachShader(prog, sh uint32) {
	p, ok := d.programs[prog]
	if !ok {
		d.raise(gpu.InvalidValue)
		return
	}
	p.shaders = append(p.shaders, sh)
}

var (
	inDecl      = regexp.MustCompile(`(?m)^\s*in\s+(?:\w+\s+)?\w+\s+(\w+)\s*;`)
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+(?:\w+\s+)?\w+\s+(\w+)\s*;`)
)

func (d *Device) LinkProgram(prog uint32) (bool, string) {
	p, ok := d.programs[prog]
	if !ok {
		d.raise(gpu.InvalidValue)
		return false, ""
	}

	var haveVertex, haveFragment bool
	p.attribs = make(map[string]int32)
	p.uniforms = make(map[string]int32)
	for _, id := range p.shaders {
		s, ok := d.shaders[id]
		if !ok || !s.compiled {
			return false, fmt.Sprintf("error: shader %d is not compiled", id)
		}
		switch s.stage {
		case gpu.VertexShader:
			haveVertex = true
			for _, m := range inDecl.FindAllStringSubmatch(s.source, -1) {
				p.attribs[m[1]] = int32(len(p.attribs))
			}
		case gpu.FragmentShader:
			haveFragment = true
		}
		for _, m := range uniformDecl.FindAllStringSubmatch(s.source, -1) {
			if _, ok := p.uniforms[m[1]]; !ok {
				p.uniforms[m[1]] = int32(len(p.uniforms))
			}
		}
	}
	if !haveVertex || !haveFragment {
		return false, "error: program needs a vertex and a fragment shader"
	}
	p.linked = true
	return true, ""
}

func (d *Device) DeleteProgram(prog uint32) {
	if _, ok := d.programs[prog]; !ok {
		d.DoubleDeletes++
		return
	}
	delete(d.programs, prog)
	if d.curProgram == prog {
		d.curProgram = 0
	}
}

func (d *Device) UseProgram(prog uint32) {
	if prog != 0 {
		if p, ok := d.programs[prog]; !ok || !p.linked {
			d.raise(gpu.InvalidOperation)
			return
		}
	}
	d.curProgram = prog
}

func (d *Device) GetAttribLocation(prog uint32, name string) int32 {
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		d.raise(gpu.InvalidOperation)
		return gpu.NotFound
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return gpu.NotFound
}

func (d *Device) GetUniformLocation(prog uint32, name string) int32 {
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		d.raise(gpu.InvalidOperation)
		return gpu.NotFound
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return gpu.NotFound
}

func (d *Device) Uniform1i(location int32, v int32) {
	if d.curProgram == 0 {
		d.raise(gpu.InvalidOperation)
		return
	}
	d.Ints[location] = v
}

func (d *Device) UniformMatrix4fv(location int32, m *[16]float32) {
	if d.curProgram == 0 {
		d.raise(gpu.InvalidOperation)
		return
	}
	d.Matrices[location] = *m
}

func (d *Device) GenTexture() uint32 {
	id := d.id()
	d.textures[id] = true
	return id
}

func (d *Device) DeleteTexture(texture uint32) {
	if !d.textures[texture] {
		d.DoubleDeletes++
		return
	}
	delete(d.textures, texture)
	if d.boundTexture == texture {
		d.boundTexture = 0
	}
}

func (d *Device) ActiveTexture(unit uint32) {
	d.activeUnit = unit
}

func (d *Device) BindTexture2D(texture uint32) {
	if texture != 0 && !d.textures[texture] {
		d.raise(gpu.InvalidOperation)
		return
	}
	d.boundTexture = texture
}

func (d *Device) SetTextureParameters(filter gpu.Filter) {
	if d.boundTexture == 0 {
		d.raise(gpu.InvalidOperation)
	}
}

func channels(format gpu.PixelFormat) int {
	switch format {
	case gpu.RGB:
		return 3
	case gpu.RGBA:
		return 4
	default:
		return 1
	}
}

func (d *Device) upload(width, height int32, format gpu.PixelFormat, typ gpu.PixelType, data []byte, full bool) {
	if d.boundTexture == 0 {
		d.raise(gpu.InvalidOperation)
		return
	}
	if width < 0 || height < 0 {
		d.raise(gpu.InvalidValue)
		return
	}
	if len(data) < int(width)*int(height)*channels(format) {
		d.raise(gpu.InvalidOperation)
		return
	}
	d.Uploads = append(d.Uploads, TexUpload{
		Texture: d.boundTexture,
		Width:   width,
		Height:  height,
		Format:  format,
		Type:    typ,
		Len:     len(data),
		Full:    full,
	})
}

func (d *Device) TexImage2D(width, height int32, format gpu.PixelFormat, typ gpu.PixelType, data []byte) {
	if d.FailTexImage != gpu.NoError {
		d.raise(d.FailTexImage)
		d.FailTexImage = gpu.NoError
		return
	}
	d.upload(width, height, format, typ, data, true)
}

func (d *Device) TexSubImage2D(width, height int32, format gpu.PixelFormat, typ gpu.PixelType, data []byte) {
	d.upload(width, height, format, typ, data, false)
}

func (d *Device) GenVertexArray() uint32 {
	id := d.id()
	d.vaos[id] = true
	return id
}

func (d *Device) DeleteVertexArray(vao uint32) {
	if !d.vaos[vao] {
		d.DoubleDeletes++
		return
	}
	delete(d.vaos, vao)
}

func (d *Device) BindVertexArray(vao uint32) {
	d.boundVAO = vao
}

func (d *Device) GenBuffer() uint32 {
	id := d.id()
	d.buffers[id] = nil
	return id
}

func (d *Device) DeleteBuffer(buffer uint32) {
	if _, ok := d.buffers[buffer]; !ok {
		d.DoubleDeletes++
		return
	}
	delete(d.buffers, buffer)
}

func (d *Device) StreamArrayBuffer(buffer uint32, data []float32) {
	if _, ok := d.buffers[buffer]; !ok {
		d.raise(gpu.InvalidOperation)
		return
	}
	d.buffers[buffer] = append([]float32(nil), data...)
	d.boundBuffer = buffer
}

func (d *Device) EnableVertexAttribArray(location uint32) {
	d.enabled[location] = true
}

func (d *Device) DisableVertexAttribArray(location uint32) {
	delete(d.enabled, location)
}

func (d *Device) VertexAttribPointer(location uint32, size int32, stride int32, offset int) {
	d.pointers[location] = attribPointer{buffer: d.boundBuffer, size: size}
}

func (d *Device) attribData(name string) []float32 {
	p, ok := d.programs[d.curProgram]
	if !ok {
		return nil
	}
	loc, ok := p.attribs[name]
	if !ok || !d.enabled[uint32(loc)] {
		return nil
	}
	ptr, ok := d.pointers[uint32(loc)]
	if !ok {
		return nil
	}
	return d.buffers[ptr.buffer]
}

func (d *Device) DrawArrays(mode gpu.DrawMode, first, count int32) {
	if d.curProgram == 0 || d.boundVAO == 0 {
		d.raise(gpu.InvalidOperation)
		return
	}
	d.Draws = append(d.Draws, DrawCall{
		Mode:      mode,
		First:     first,
		Count:     count,
		Program:   d.curProgram,
		Texture:   d.boundTexture,
		Positions: d.attribData("position"),
		TexCoords: d.attribData("texturePosition"),
	})
}
