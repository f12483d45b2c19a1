// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/framecap/filter"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// compositeUniformSize is the byte size of the composite uniform buffer.
// Layout: texel (vec2<f32>) = 8 bytes + size (vec2<f32>) = 8 bytes +
// args (vec4<f32>) = 16 bytes = 32 bytes.
const compositeUniformSize = 32

// compositePipeline manages the GPU resources for the capture compositing
// pass: a fullscreen triangle that samples the uploaded scene texture and
// applies the selected post-filter in the fragment shader. One pipeline is
// created per capture run, bound to the filter's fragment entry point.
type compositePipeline struct {
	device hal.Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
}

// filterEntryPoint maps a post-filter to its fragment shader entry point.
func filterEntryPoint(t filter.Type) string {
	switch t {
	case filter.Blur:
		return "fs_blur"
	case filter.Pixelate:
		return "fs_pixelate"
	case filter.ToneMap:
		return "fs_tonemap"
	case filter.Glow:
		return "fs_glow"
	case filter.Vignette:
		return "fs_vignette"
	default:
		return "fs_blit"
	}
}

// filterArgs returns the args vector for the composite uniform. The meaning
// of each lane matches the Params struct in composite.wgsl.
func filterArgs(t filter.Type) [4]float32 {
	switch t {
	case filter.Blur:
		return [4]float32{4, 0, 0, 0}
	case filter.Pixelate:
		return [4]float32{8, 0, 0, 0}
	case filter.Glow:
		return [4]float32{0, 0, 200.0 / 255.0, 0}
	case filter.Vignette:
		return [4]float32{0, 0.45, 0, 0}
	default:
		return [4]float32{}
	}
}

// newCompositePipeline compiles the composite shader and creates the render
// pipeline for the given filter along with the sampler, uniform buffer and
// bind group referencing the source texture view.
func newCompositePipeline(device hal.Device, srcView hal.TextureView, ft filter.Type) (*compositePipeline, error) {
	p := &compositePipeline{device: device}

	shader, err := createShaderModule(device, "capture_composite_shader", compositeWGSL)
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("compile composite shader: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: Params (uniform buffer, fragment)
	//   Binding 1: Scene texture (texture_2d, fragment)
	//   Binding 2: Sampler (fragment)
	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "capture_composite_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create composite bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "capture_composite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create composite pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "capture_composite_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create composite sampler: %w", err)
	}
	p.sampler = sampler

	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "capture_composite_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: filterEntryPoint(ft),
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create composite pipeline: %w", err)
	}
	p.pipeline = pipeline

	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "capture_composite_uniform",
		Size:  compositeUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create composite uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "capture_composite_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: compositeUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: srcView.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create composite bind group: %w", err)
	}
	p.bindGroup = bindGroup

	return p, nil
}

// uploadParams writes the composite uniform for the given target size.
// Filter parameters do not vary per frame, so this runs once at setup.
func (p *compositePipeline) uploadParams(queue hal.Queue, width, height int, ft filter.Type) {
	queue.WriteBuffer(p.uniformBuf, 0, makeCompositeUniform(width, height, filterArgs(ft)))
}

// makeCompositeUniform serializes the 32-byte Params uniform.
func makeCompositeUniform(width, height int, args [4]float32) []byte {
	buf := make([]byte, compositeUniformSize)
	vals := [8]float32{
		1 / float32(width), 1 / float32(height),
		float32(width), float32(height),
		args[0], args[1], args[2], args[3],
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// recordDraw records the fullscreen composite draw into a render pass.
func (p *compositePipeline) recordDraw(rp hal.RenderPassEncoder) {
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
}

// Destroy releases all pipeline resources in reverse creation order.
// Safe to call on a partially constructed pipeline.
func (p *compositePipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
