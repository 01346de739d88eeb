package opengl

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"desk-scene/core"
	"desk-scene/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// FrameLights is the per-frame lighting state read from the scene.
type FrameLights struct {
	Ambient        core.Color // colour * intensity, summed over ambient lights
	HasDirectional bool
	Direction      mgl32.Vec3
	Color          core.Color
	Intensity      float32
	LightViewProj  mgl32.Mat4
	Shadows        bool
	ShadowBias     float32
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	// Vertex transform uniforms
	modelLoc         int32
	viewProjLoc      int32
	normalMatrixLoc  int32
	lightViewProjLoc int32

	// Lighting
	ambientColorLoc   int32
	hasDirLightLoc    int32
	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32
	cameraPosLoc      int32

	// Material
	matColorLoc      int32
	matMetalnessLoc  int32
	matRoughnessLoc  int32
	matOpacityLoc    int32
	aoIntensityLoc   int32
	mapRepeatLoc     int32
	dispScaleLoc     int32
	dispBiasLoc      int32
	hasColorTexLoc   int32
	hasNormalTexLoc  int32
	hasRoughTexLoc   int32
	hasMetalTexLoc   int32
	hasAOTexLoc      int32
	hasDispTexLoc    int32
	receiveShadowLoc int32
	hasShadowsLoc    int32
	shadowBiasLoc    int32

	// Shadow pass
	shadowProg        uint32
	shadowLightMVPLoc int32
	shadowDisp        displacementLocs
	shadowMap         *ShadowMap

	target  *RenderTarget
	samples int

	viewportW, viewportH int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
	textures  map[*scene.Texture]struct{}

	log *slog.Logger
}

// displacementLocs are the displacement uniforms of one program.
type displacementLocs struct {
	scale, bias, has int32
}

// Texture units
const (
	unitColor = iota
	unitShadow
	unitNormal
	unitRoughness
	unitMetalness
	unitAO
	unitDisplacement
)

// NewRenderer initialises OpenGL. samples is the MSAA sample count of the
// offscreen target. Must be called after the GLFW window context is made
// current.
func NewRenderer(samples int, log *slog.Logger) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log = log.With("component", "opengl")
	log.Info("opengl ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}
	shadowProg, err := newProgram(depthVertSrc, depthFragSrc)
	if err != nil {
		return nil, fmt.Errorf("depth shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	loc := func(name string) int32 {
		return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}

	r := &Renderer{
		program:    prog,
		shadowProg: shadowProg,

		modelLoc:         loc("model"),
		viewProjLoc:      loc("viewProj"),
		normalMatrixLoc:  loc("normalMatrix"),
		lightViewProjLoc: loc("lightViewProj"),

		ambientColorLoc:   loc("ambientColor"),
		hasDirLightLoc:    loc("hasDirLight"),
		lightDirLoc:       loc("lightDir"),
		lightColorLoc:     loc("lightColor"),
		lightIntensityLoc: loc("lightIntensity"),
		cameraPosLoc:      loc("cameraPos"),

		matColorLoc:      loc("matColor"),
		matMetalnessLoc:  loc("matMetalness"),
		matRoughnessLoc:  loc("matRoughness"),
		matOpacityLoc:    loc("matOpacity"),
		aoIntensityLoc:   loc("aoMapIntensity"),
		mapRepeatLoc:     loc("mapRepeat"),
		dispScaleLoc:     loc("displacementScale"),
		dispBiasLoc:      loc("displacementBias"),
		hasColorTexLoc:   loc("hasColorTex"),
		hasNormalTexLoc:  loc("hasNormalTex"),
		hasRoughTexLoc:   loc("hasRoughnessTex"),
		hasMetalTexLoc:   loc("hasMetalnessTex"),
		hasAOTexLoc:      loc("hasAOTex"),
		hasDispTexLoc:    loc("hasDisplacementTex"),
		receiveShadowLoc: loc("receiveShadow"),
		hasShadowsLoc:    loc("hasShadows"),
		shadowBiasLoc:    loc("shadowBias"),

		shadowLightMVPLoc: gl.GetUniformLocation(shadowProg, gl.Str("lightMVP\x00")),
		shadowDisp: displacementLocs{
			scale: gl.GetUniformLocation(shadowProg, gl.Str("displacementScale\x00")),
			bias:  gl.GetUniformLocation(shadowProg, gl.Str("displacementBias\x00")),
			has:   gl.GetUniformLocation(shadowProg, gl.Str("hasDisplacementTex\x00")),
		},

		samples:   samples,
		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		textures:  make(map[*scene.Texture]struct{}),
		log:       log,
	}

	gl.UseProgram(prog)
	gl.Uniform1i(loc("colorTex"), unitColor)
	gl.Uniform1i(loc("shadowMap"), unitShadow)
	gl.Uniform1i(loc("normalTex"), unitNormal)
	gl.Uniform1i(loc("roughnessTex"), unitRoughness)
	gl.Uniform1i(loc("metalnessTex"), unitMetalness)
	gl.Uniform1i(loc("aoTex"), unitAO)
	gl.Uniform1i(loc("displacementTex"), unitDisplacement)

	gl.UseProgram(shadowProg)
	gl.Uniform1i(gl.GetUniformLocation(shadowProg, gl.Str("displacementTex\x00")), unitDisplacement)
	gl.UseProgram(prog)

	ident := mgl32.Ident4()
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &ident[0])

	return r, nil
}

// SetDrawingBufferSize (re)allocates the offscreen target the scene is
// rendered into, in device pixels.
func (r *Renderer) SetDrawingBufferSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if r.target == nil {
		t, err := NewRenderTarget(width, height, r.samples)
		if err != nil {
			return err
		}
		r.target = t
	} else if err := r.target.Resize(width, height); err != nil {
		return err
	}
	r.viewportW, r.viewportH = int32(width), int32(height)
	return nil
}

// EnableShadows creates or resizes the depth FBO.
func (r *Renderer) EnableShadows(size int) error {
	if r.shadowMap != nil {
		if r.shadowMap.Size == int32(size) {
			return nil
		}
		r.shadowMap.Destroy()
		r.shadowMap = nil
	}
	sm, err := NewShadowMap(size)
	if err != nil {
		return err
	}
	r.shadowMap = sm
	return nil
}

func (r *Renderer) HasShadowMap() bool {
	return r.shadowMap != nil
}

// BeginShadowPass binds the depth FBO and sets up for the shadow pass.
func (r *Renderer) BeginShadowPass() {
	if r.shadowMap == nil {
		return
	}
	r.shadowMap.Bind()
	gl.UseProgram(r.shadowProg)
	// Depth from back faces only.
	gl.CullFace(gl.FRONT)
}

// DrawMeshShadow draws a mesh into the depth buffer using the depth-only shader.
func (r *Renderer) DrawMeshShadow(mesh *scene.Mesh, lightMVP mgl32.Mat4) {
	if r.shadowMap == nil {
		return
	}
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	gl.UniformMatrix4fv(r.shadowLightMVPLoc, 1, false, &lightMVP[0])

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	gl.Uniform1f(r.shadowDisp.scale, mat.DisplacementScale)
	gl.Uniform1f(r.shadowDisp.bias, mat.DisplacementBias)
	r.bindMap(mat.DisplacementMap, unitDisplacement, r.shadowDisp.has)
	r.draw(gpu, mesh)
}

// EndShadowPass restores culling; BeginFrame rebinds the colour target.
func (r *Renderer) EndShadowPass() {
	if r.shadowMap == nil {
		return
	}
	gl.CullFace(gl.BACK)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// BeginFrame binds the offscreen target, clears it and sets per-frame
// lighting, camera and shadow uniforms.
func (r *Renderer) BeginFrame(clear core.Color, lights FrameLights, camPos mgl32.Vec3, viewProj mgl32.Mat4) {
	if r.target != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.target.FBO)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	gl.ClearColor(clear.R, clear.G, clear.B, clear.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.viewProjLoc, 1, false, &viewProj[0])
	gl.Uniform3f(r.cameraPosLoc, camPos[0], camPos[1], camPos[2])
	gl.Uniform3f(r.ambientColorLoc, lights.Ambient.R, lights.Ambient.G, lights.Ambient.B)

	gl.Uniform1i(r.hasDirLightLoc, boolInt(lights.HasDirectional))
	gl.Uniform3f(r.lightDirLoc, lights.Direction[0], lights.Direction[1], lights.Direction[2])
	gl.Uniform3f(r.lightColorLoc, lights.Color.R, lights.Color.G, lights.Color.B)
	gl.Uniform1f(r.lightIntensityLoc, lights.Intensity)

	shadows := lights.Shadows && r.shadowMap != nil
	gl.Uniform1i(r.hasShadowsLoc, boolInt(shadows))
	gl.Uniform1f(r.shadowBiasLoc, lights.ShadowBias)
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &lights.LightViewProj[0])
	if shadows {
		gl.ActiveTexture(gl.TEXTURE0 + unitShadow)
		gl.BindTexture(gl.TEXTURE_2D, r.shadowMap.DepthTex)
	}

	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
}

// BeginTransparent switches to alpha blending without depth writes. Call
// after all opaque meshes are drawn.
func (r *Renderer) BeginTransparent() {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
}

// DrawMesh draws mesh with its material at the given model matrix.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, model mgl32.Mat4, receiveShadow bool) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])
	normal := model.Mat3().Inv().Transpose()
	gl.UniformMatrix3fv(r.normalMatrixLoc, 1, false, &normal[0])
	gl.Uniform1i(r.receiveShadowLoc, boolInt(receiveShadow))

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyMaterial(mat)

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
		defer gl.Enable(gl.CULL_FACE)
	}
	r.draw(gpu, mesh)
}

// EndFrame copies the offscreen target to the window framebuffer.
func (r *Renderer) EndFrame(windowW, windowH int) error {
	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
	if r.target == nil {
		return nil
	}
	return r.target.BlitToDefault(int32(windowW), int32(windowH))
}

func (r *Renderer) draw(gpu *GPUMesh, mesh *scene.Mesh) {
	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform4f(r.matColorLoc, mat.Color.R, mat.Color.G, mat.Color.B, mat.Color.A)
	gl.Uniform1f(r.matMetalnessLoc, mat.Metalness)
	gl.Uniform1f(r.matRoughnessLoc, mat.Roughness)
	gl.Uniform1f(r.matOpacityLoc, mat.Opacity)
	gl.Uniform1f(r.aoIntensityLoc, mat.AOMapIntensity)
	gl.Uniform1f(r.dispScaleLoc, mat.DisplacementScale)
	gl.Uniform1f(r.dispBiasLoc, mat.DisplacementBias)

	repeat := mgl32.Vec2{1, 1}
	if mat.Map != nil {
		repeat = mat.Map.Repeat
	}
	gl.Uniform2f(r.mapRepeatLoc, repeat[0], repeat[1])

	r.bindMap(mat.Map, unitColor, r.hasColorTexLoc)
	r.bindMap(mat.NormalMap, unitNormal, r.hasNormalTexLoc)
	r.bindMap(mat.RoughnessMap, unitRoughness, r.hasRoughTexLoc)
	r.bindMap(mat.MetalnessMap, unitMetalness, r.hasMetalTexLoc)
	r.bindMap(mat.AOMap, unitAO, r.hasAOTexLoc)
	r.bindMap(mat.DisplacementMap, unitDisplacement, r.hasDispTexLoc)
}

// bindMap binds tex to unit when it has pixels; otherwise the shader is
// told the map is absent.
func (r *Renderer) bindMap(tex *scene.Texture, unit uint32, hasLoc int32) {
	id := r.ensureTexture(tex)
	if id == 0 {
		gl.Uniform1i(hasLoc, 0)
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.Uniform1i(hasLoc, 1)
}

func (r *Renderer) ensureTexture(tex *scene.Texture) uint32 {
	if !tex.Ready() {
		return 0
	}
	if tex.GLID == 0 || tex.GLVersion != tex.Version {
		if err := UploadTexture(tex); err != nil {
			r.log.Warn("texture upload failed", "texture", tex.Name, "err", err)
			return 0
		}
		r.textures[tex] = struct{}{}
	}
	return tex.GLID
}

func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
		{3, unsafe.Offsetof(v.Tangent)},
		{3, unsafe.Offsetof(v.Bitangent)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), a.size, gl.FLOAT, false, stride, a.offset)
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// Destroy frees every GPU object the renderer created.
func (r *Renderer) Destroy() {
	for mesh, gpu := range r.gpuMeshes {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.EBO != 0 {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		mesh.GPUData = nil
	}
	r.gpuMeshes = make(map[*scene.Mesh]*GPUMesh)
	for tex := range r.textures {
		DeleteTexture(tex)
	}
	r.textures = make(map[*scene.Texture]struct{})
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
		r.shadowMap = nil
	}
	if r.target != nil {
		r.target.Destroy()
		r.target = nil
	}
	gl.DeleteProgram(r.program)
	gl.DeleteProgram(r.shadowProg)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
