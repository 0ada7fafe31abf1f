package shaders

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed *.frag *.vert
var templateDir embed.FS

const (
	VertexShaderName   = "image.vert"
	FragmentShaderName = "image.frag"

	DefaultGLSLVersion = "410 core"
)

type Shaderer struct {
	templates *template.Template
}

func NewShaderer() (*Shaderer, error) {
	s := &Shaderer{}

	var err error

	s.templates, err = template.ParseFS(templateDir, "*.frag", "*.vert")

	return s, err
}

// ShaderData contains stuff that gets passed to the shader
type ShaderData struct {
	GLSLVersion string
}

// Precision is the default precision qualifier, which GLSL ES wants and
// desktop GLSL does not need.
func (d *ShaderData) Precision() string {
	if strings.HasSuffix(d.GLSLVersion, " es") {
		return "mediump "
	}
	return ""
}

func (s *Shaderer) GetShaderSource(name string, data *ShaderData) (string, error) {
	var b bytes.Buffer
	err := s.templates.ExecuteTemplate(&b, name, data)
	if err != nil {
		return "", fmt.Errorf("error while rendering template: %s", err)
	}

	return b.String(), nil
}

func (s *Shaderer) TemplateNames() []string {
	var names []string
	for _, t := range s.templates.Templates() {
		names = append(names, t.Name())
	}
	return names
}

// Sources renders the vertex and fragment shader for data.
func Sources(data *ShaderData) (string, string, error) {
	if data.GLSLVersion == "" {
		data = &ShaderData{GLSLVersion: DefaultGLSLVersion}
	}

	shaderer, err := NewShaderer()
	if err != nil {
		return "", "", fmt.Errorf("could not get shaders: %w", err)
	}

	vertexShader, err := shaderer.GetShaderSource(VertexShaderName, data)
	if err != nil {
		return "", "", fmt.Errorf("could not get vertex shader: %w", err)
	}

	fragmentShader, err := shaderer.GetShaderSource(FragmentShaderName, data)
	if err != nil {
		return "", "", fmt.Errorf("could not get fragment shader: %w", err)
	}

	return vertexShader, fragmentShader, nil
}
