package mesh

import (
	"bytes"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/tsawler/ifcnotes/atlas"
	"github.com/tsawler/ifcnotes/internal/atomicfile"
	"github.com/tsawler/ifcnotes/internal/logging"
	"github.com/tsawler/ifcnotes/model"
)

// ExportOptions controls the exported scene
type ExportOptions struct {
	// YUp converts the IFC Z-up axes to glTF's Y-up convention
	YUp bool
	// Name of the mesh and node, "annotations" when empty
	Name string
	// Generator is written to the asset block
	Generator string
}

func (o ExportOptions) name() string {
	if o.Name == "" {
		return "annotations"
	}
	return o.Name
}

// axis maps a model vector to glTF coordinates
func (o ExportOptions) axis(v model.Vec3) [3]float32 {
	if o.YUp {
		return [3]float32{float32(v.X), float32(v.Z), float32(-v.Y)}
	}
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Document builds the glTF document for the mesh textured with the atlas. The atlas
// must hold one entry per face, in the same order.
func Document(m *Mesh, a *atlas.Atlas, opts ExportOptions) (*gltf.Document, error) {
	if len(a.Entries) != len(m.Faces) {
		return nil, fmt.Errorf("atlas has %d entries for %d faces", len(a.Entries), len(m.Faces))
	}

	doc := gltf.NewDocument()
	if opts.Generator != "" {
		doc.Asset.Generator = opts.Generator
	}
	if len(m.Faces) == 0 {
		logging.Logger().Warn("no annotation texts, writing an empty scene")
		return doc, nil
	}

	positions := make([][3]float32, 0, 4*len(m.Faces))
	normals := make([][3]float32, 0, 4*len(m.Faces))
	for _, f := range m.Faces {
		n := opts.axis(f.Normal())
		for _, v := range f.Vertices {
			positions = append(positions, opts.axis(v))
			normals = append(normals, n)
		}
	}

	// glTF puts the texture origin at the top-left corner
	uvs := a.UVs()
	texcoords := make([][2]float32, len(uvs))
	for i, uv := range uvs {
		texcoords[i] = [2]float32{float32(uv.U), float32(1 - uv.V)}
	}

	img, err := a.PNG()
	if err != nil {
		return nil, err
	}
	imageIdx, err := modeler.WriteImage(doc, "atlas", "image/png", bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("failed to embed atlas: %w", err)
	}

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	uvAccessor := modeler.WriteTextureCoord(doc, texcoords)
	indicesAccessor := modeler.WriteIndices(doc, m.Indices)

	doc.Samplers = []*gltf.Sampler{{
		MagFilter: gltf.MagLinear,
		MinFilter: gltf.MinLinear,
		WrapS:     gltf.WrapClampToEdge,
		WrapT:     gltf.WrapClampToEdge,
	}}
	doc.Textures = []*gltf.Texture{{
		Sampler: gltf.Index(0),
		Source:  gltf.Index(uint32(imageIdx)),
	}}
	doc.Materials = []*gltf.Material{{
		Name:        "atlas",
		DoubleSided: true,
		AlphaMode:   gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float32{1, 1, 1, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
			MetallicFactor:   gltf.Float(0),
			RoughnessFactor:  gltf.Float(1),
		},
	}}

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION:   uint32(posAccessor),
			gltf.NORMAL:     uint32(normalAccessor),
			gltf.TEXCOORD_0: uint32(uvAccessor),
		},
		Indices:  gltf.Index(uint32(indicesAccessor)),
		Material: gltf.Index(0),
	}
	doc.Meshes = []*gltf.Mesh{{Name: opts.name(), Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: opts.name(), Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	logging.Logger().Debug("built glTF document", "faces", len(m.Faces), "triangles", m.Triangles(), "atlas", len(img))
	return doc, nil
}

// WriteGLB writes the mesh as a binary glTF
func WriteGLB(w io.Writer, m *Mesh, a *atlas.Atlas, opts ExportOptions) error {
	doc, err := Document(m, a, opts)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode glTF: %w", err)
	}
	return nil
}

// GLB returns the encoded binary glTF
func GLB(m *Mesh, a *atlas.Atlas, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGLB(&buf, m, a, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveGLB writes the binary glTF to path. Output goes to a temporary file in the same
// directory that is renamed on success, so a failed export leaves nothing behind.
func SaveGLB(path string, m *Mesh, a *atlas.Atlas, opts ExportOptions) error {
	data, err := GLB(m, a, opts)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, data)
}
