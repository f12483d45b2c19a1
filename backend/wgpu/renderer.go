// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"context"
	"fmt"
	"image"
	"time"
	"unsafe"

	"github.com/gogpu/framecap"
	"github.com/gogpu/framecap/filter"
	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

const (
	// frameTimeout bounds the GPU completion wait for one frame.
	frameTimeout = 5 * time.Second

	// pollInterval paces the completion polling loop. The HAL exposes
	// submission completion through Queue.PollCompleted only, so the
	// waiter polls rather than blocks.
	pollInterval = 200 * time.Microsecond
)

func init() {
	framecap.RegisterBackend("wgpu", 100, New, Available)
}

// Available reports whether a HAL GPU backend can be reached. Capture
// uses Vulkan; on hosts without it the registry falls through to the
// software backend.
func Available() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}

// renderer is the GPU capture backend. The scene is rasterized by gg's
// CPU pipeline into the reusable drawing context, uploaded to a source
// texture, and composited into the BGRA8 render target by a fullscreen
// pass that applies the post-filter in the fragment shader. The target
// is then copied into a persistent staging buffer for readback.
//
// All GPU resources are allocated once at construction and reused for
// every frame. Each frame's submission index is bridged to the frame's
// completion by a waiter goroutine polling the queue.
type renderer struct {
	width  int
	height int
	scale  float64
	post   filter.Type

	dc *gg.Context

	device     hal.Device
	queue      hal.Queue
	instance   hal.Instance
	ownsDevice bool

	srcTex  hal.Texture
	srcView hal.TextureView
	dstTex  hal.Texture
	dstView hal.TextureView
	staging hal.Buffer
	comp    *compositePipeline

	bytesPerRow        int
	alignedBytesPerRow int
	stagingSize        uint64

	allocs int

	pending   *framecap.Completion
	pendingIx int

	destroyed bool
}

// New creates the GPU capture renderer. When the options carry a device
// provider the renderer uses the host application's shared device;
// otherwise it opens a standalone Vulkan device and owns its lifetime.
func New(opts framecap.RendererOptions) (framecap.Renderer, error) {
	if opts.PixelWidth <= 0 || opts.PixelHeight <= 0 {
		return nil, fmt.Errorf("wgpu: invalid target size %dx%d",
			opts.PixelWidth, opts.PixelHeight)
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	r := &renderer{
		width:  opts.PixelWidth,
		height: opts.PixelHeight,
		scale:  scale,
		post:   opts.Filter,
		allocs: 1,
	}

	if opts.DeviceProvider != nil {
		if err := r.useSharedDevice(opts.DeviceProvider); err != nil {
			return nil, err
		}
	} else if err := r.openDevice(); err != nil {
		return nil, err
	}

	if err := r.createResources(); err != nil {
		r.Destroy()
		return nil, err
	}

	r.dc = gg.NewContext(r.width, r.height)

	framecap.Logger().Debug("wgpu capture renderer ready",
		"size", fmt.Sprintf("%dx%d", r.width, r.height),
		"filter", r.post.String(),
		"shared_device", !r.ownsDevice)
	return r, nil
}

// useSharedDevice adopts the host application's HAL device. The
// provider must expose HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func (r *renderer) useSharedDevice(provider any) error {
	hp, ok := provider.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return fmt.Errorf("wgpu: device provider does not expose HAL handles")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	r.device = device
	r.queue = queue
	r.ownsDevice = false
	return nil
}

// openDevice creates a standalone Vulkan device for capture-only use.
func (r *renderer) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}
	r.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("wgpu: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("wgpu: open device: %w", err)
	}
	r.device = openDev.Device
	r.queue = openDev.Queue
	r.ownsDevice = true

	framecap.Logger().Info("wgpu capture: GPU initialized (standalone)",
		"adapter", selected.Info.Name)
	return nil
}

// createResources allocates the frame-invariant GPU objects: the source
// texture the rasterized scene uploads into, the BGRA8 render target
// the composite pass draws into, the aligned staging buffer for
// readback, and the composite pipeline itself.
func (r *renderer) createResources() error {
	w := uint32(r.width)
	h := uint32(r.height)

	srcTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "capture_source",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create source texture: %w", err)
	}
	r.srcTex = srcTex

	srcView, err := r.device.CreateTextureView(srcTex, &hal.TextureViewDescriptor{
		Label:         "capture_source_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create source view: %w", err)
	}
	r.srcView = srcView

	dstTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "capture_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target texture: %w", err)
	}
	r.dstTex = dstTex

	dstView, err := r.device.CreateTextureView(dstTex, &hal.TextureViewDescriptor{
		Label:         "capture_target_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target view: %w", err)
	}
	r.dstView = dstView

	r.bytesPerRow = r.width * 4
	r.alignedBytesPerRow = alignBytesPerRow(r.bytesPerRow)
	r.stagingSize = uint64(r.alignedBytesPerRow) * uint64(r.height)

	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "capture_staging",
		Size:  r.stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	r.staging = staging

	comp, err := newCompositePipeline(r.device, r.srcView, r.post)
	if err != nil {
		return err
	}
	r.comp = comp
	comp.uploadParams(r.queue, r.width, r.height, r.post)

	return nil
}

func (r *renderer) PixelSize() (int, int) {
	return r.width, r.height
}

func (r *renderer) Submit(req framecap.FrameRequest, scene framecap.Scene) (*framecap.Completion, error) {
	if r.destroyed {
		return nil, framecap.ErrRendererDestroyed
	}
	if r.pending != nil && !r.pending.Resolved() {
		return nil, framecap.ErrFrameInFlight
	}

	scene.Advance(req.Time)

	r.dc.ClearWithColor(gg.RGBA{})
	r.dc.Push()
	r.dc.Scale(r.scale, r.scale)
	scene.Draw(r.dc)
	r.dc.Pop()

	raw, ok := r.dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("wgpu: unexpected image type from rasterizer")
	}

	// Upload the rasterized scene. The context image is tightly packed.
	r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: r.srcTex, MipLevel: 0},
		raw.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(r.bytesPerRow),
			RowsPerImage: uint32(r.height),
		},
		&hal.Extent3D{Width: uint32(r.width), Height: uint32(r.height), DepthOrArrayLayers: 1},
	)

	submission, cmdBuf, err := r.encodeFrame()
	if err != nil {
		return nil, err
	}

	comp := framecap.NewCompletion()
	r.pending = comp
	r.pendingIx = req.Index

	// Bridge the submission to the completion. The waiter owns the
	// command buffer and is the last goroutine to touch the device for
	// this frame; Destroy joins the completion before teardown.
	go func() {
		waitErr := awaitCompletion(r.queue.PollCompleted, submission, frameTimeout)
		r.device.FreeCommandBuffer(cmdBuf)
		if waitErr != nil {
			comp.Fail(waitErr)
			return
		}
		comp.Resolve()
	}()

	return comp, nil
}

// awaitCompletion polls until the completed submission index reaches
// index or the timeout elapses. PollCompleted is non-blocking and
// monotonic, so a plain poll loop is the only way to observe GPU
// completion through the HAL.
func awaitCompletion(poll func() uint64, index uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for poll() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("wgpu: submission %d not completed after %s", index, timeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// encodeFrame records the composite pass and the target-to-staging copy
// for the current frame, submits the command buffer, and returns the
// submission index that marks the staging buffer as holding the
// frame's pixels once completed.
func (r *renderer) encodeFrame() (uint64, hal.CommandBuffer, error) {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "capture_encoder",
	})
	if err != nil {
		return 0, nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("capture_frame"); err != nil {
		return 0, nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "capture_composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.dstView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	r.comp.recordDraw(rp)
	rp.End()

	// CopyTextureToBuffer requires TRANSFER_SRC layout on Vulkan; the
	// pass leaves the target in COLOR_ATTACHMENT layout.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.dstTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(r.dstTex, r.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(r.alignedBytesPerRow),
			RowsPerImage: uint32(r.height),
		},
		TextureBase: hal.ImageCopyTexture{Texture: r.dstTex, MipLevel: 0},
		Size:        hal.Extent3D{Width: uint32(r.width), Height: uint32(r.height), DepthOrArrayLayers: 1},
	}})

	// Back to RenderAttachment so the next frame's pass starts from the
	// layout its clear expects.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.dstTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return 0, nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}

	// A shared device may carry an active swapchain; suppress its
	// semaphore binding so the offscreen submit does not consume the
	// host compositor's acquire/present semaphores.
	r.queue.SetSwapchainSuppressed(true)
	submission, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	r.queue.SetSwapchainSuppressed(false)
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		return 0, nil, fmt.Errorf("wgpu: submit: %w", err)
	}

	return submission, cmdBuf, nil
}

func (r *renderer) Readback() (*framecap.RenderedFrame, error) {
	if r.destroyed {
		return nil, framecap.ErrRendererDestroyed
	}
	if r.pending == nil || !r.pending.Resolved() {
		return nil, framecap.ErrNoFramePending
	}

	// The completion guarantees the copy submission has finished, so
	// mapping is safe. The HAL invalidates non-coherent memory inside
	// MapBuffer; the mapping is only valid until UnmapBuffer, so the
	// pixels are copied out first.
	mapping, err := r.device.MapBuffer(r.staging, 0, r.stagingSize)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	readback := make([]byte, r.stagingSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), r.stagingSize))
	if err := r.device.UnmapBuffer(r.staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}

	tight := stripRowPadding(readback, r.bytesPerRow, r.alignedBytesPerRow, r.height)
	pix := make([]byte, r.width*r.height*4)
	convertBGRAToRGBA(tight, pix, r.width*r.height)

	frame := &framecap.RenderedFrame{
		Index:  r.pendingIx,
		Pix:    pix,
		Width:  r.width,
		Height: r.height,
		Stride: r.bytesPerRow,
		Scale:  r.scale,
	}
	r.pending = nil
	return frame, nil
}

func (r *renderer) Allocations() int { return r.allocs }

// drainPending joins the in-flight frame's waiter goroutine. The
// waiter frees the frame's command buffer right before it resolves the
// completion, so teardown must observe the completion before touching
// any GPU object the waiter still uses.
func (r *renderer) drainPending() {
	if r.pending == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()
	_ = r.pending.Await(ctx)
	r.pending = nil
}

// Destroy releases all GPU resources, joining any in-flight frame
// first. A shared device is left alone; a standalone device and its
// instance are destroyed last.
func (r *renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true

	r.drainPending()
	if r.device != nil {
		_ = r.device.WaitIdle()
	}

	if r.comp != nil {
		r.comp.Destroy()
		r.comp = nil
	}
	if r.staging != nil {
		r.device.DestroyBuffer(r.staging)
		r.staging = nil
	}
	if r.dstView != nil {
		r.device.DestroyTextureView(r.dstView)
		r.dstView = nil
	}
	if r.dstTex != nil {
		r.device.DestroyTexture(r.dstTex)
		r.dstTex = nil
	}
	if r.srcView != nil {
		r.device.DestroyTextureView(r.srcView)
		r.srcView = nil
	}
	if r.srcTex != nil {
		r.device.DestroyTexture(r.srcTex)
		r.srcTex = nil
	}
	if r.dc != nil {
		_ = r.dc.Close()
		r.dc = nil
	}

	if r.ownsDevice {
		if r.device != nil {
			r.device.Destroy()
		}
		if r.instance != nil {
			r.instance.Destroy()
		}
	}
	r.device = nil
	r.queue = nil
	r.instance = nil
}
