package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// CameraConfig describes camera placement and lens. It is inert until
// Initialize turns it into a Camera that can generate rays.
type CameraConfig struct {
	Width, Height int       // Image resolution in pixels
	Center        core.Vec3 // Eye position (look-from)
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Camera-relative up direction
	VFov          float64   // Vertical field of view in degrees
	DefocusAngle  float64   // Cone angle of rays through each pixel in degrees; 0 disables depth of field
	FocusDistance float64   // Distance from the eye to the plane of perfect focus
}

// DefaultCameraConfig returns an 800x450 camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Width:         800,
		Height:        450,
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		DefocusAngle:  0,
		FocusDistance: 1,
	}
}

// WithResolution sets the image size
func (c CameraConfig) WithResolution(width, height int) CameraConfig {
	c.Width = width
	c.Height = height
	return c
}

// WithPosition places the camera
func (c CameraConfig) WithPosition(center, lookAt, up core.Vec3) CameraConfig {
	c.Center = center
	c.LookAt = lookAt
	c.Up = up
	return c
}

// WithLens sets field of view, defocus angle and focus distance
func (c CameraConfig) WithLens(vfov, defocusAngle, focusDistance float64) CameraConfig {
	c.VFov = vfov
	c.DefocusAngle = defocusAngle
	c.FocusDistance = focusDistance
	return c
}

// Validate reports every problem with the configuration
func (c CameraConfig) Validate() error {
	var err error
	if c.Width <= 0 || c.Height <= 0 {
		err = multierr.Append(err, errors.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		err = multierr.Append(err, errors.Errorf("vertical field of view must be in (0, 180), got %g", c.VFov))
	}
	if c.FocusDistance <= 0 {
		err = multierr.Append(err, errors.Errorf("focus distance must be positive, got %g", c.FocusDistance))
	}
	if c.DefocusAngle < 0 {
		err = multierr.Append(err, errors.Errorf("defocus angle must not be negative, got %g", c.DefocusAngle))
	}
	forward := c.LookAt.Subtract(c.Center)
	if forward.NearZero() {
		err = multierr.Append(err, errors.New("camera center and look-at point coincide"))
	} else if c.Up.Cross(forward).NearZero() {
		err = multierr.Append(err, errors.New("up vector is parallel to the view direction"))
	}
	return err
}

// Camera generates primary rays. It can only be obtained from CameraConfig.Initialize.
type Camera struct {
	config       CameraConfig
	center       core.Vec3
	pixel00      core.Vec3 // Center of the upper-left pixel
	pixelDeltaU  core.Vec3 // Offset to the pixel to the right
	pixelDeltaV  core.Vec3 // Offset to the pixel below
	u, v, w      core.Vec3 // Camera frame: right, up, backward
	defocusDiskU core.Vec3
	defocusDiskV core.Vec3
}

// Initialize derives the camera frame and viewport from the configuration
func (c CameraConfig) Initialize() (*Camera, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid camera configuration")
	}

	h := math.Tan(mgl64.DegToRad(c.VFov) / 2)
	viewportHeight := 2 * h * c.FocusDistance
	viewportWidth := viewportHeight * float64(c.Width) / float64(c.Height)

	w := c.Center.Subtract(c.LookAt).Normalize()
	u := c.Up.Cross(w).Normalize()
	v := w.Cross(u)

	// Viewport edges: across the top and down the left side
	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Multiply(-viewportHeight)

	pixelDeltaU := viewportU.Divide(float64(c.Width))
	pixelDeltaV := viewportV.Divide(float64(c.Height))

	upperLeft := c.Center.
		Subtract(w.Multiply(c.FocusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))

	defocusRadius := c.FocusDistance * math.Tan(mgl64.DegToRad(c.DefocusAngle/2))

	return &Camera{
		config:       c,
		center:       c.Center,
		pixel00:      upperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5)),
		pixelDeltaU:  pixelDeltaU,
		pixelDeltaV:  pixelDeltaV,
		u:            u,
		v:            v,
		w:            w,
		defocusDiskU: u.Multiply(defocusRadius),
		defocusDiskV: v.Multiply(defocusRadius),
	}, nil
}

// Width returns the image width in pixels
func (c *Camera) Width() int {
	return c.config.Width
}

// Height returns the image height in pixels
func (c *Camera) Height() int {
	return c.config.Height
}

// Config returns the configuration the camera was initialized from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 {
	return c.w.Negate()
}

// GetRay returns a ray through a random point in pixel (i, j), where j
// counts down from the top row. With a nonzero defocus angle the origin is
// sampled on the lens disk. The ray time is uniform in [0, 1).
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := core.SampleSquareOffset(sampler.Get2D())
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y))

	origin := c.center
	if c.config.DefocusAngle > 0 {
		p := core.SamplePointInUnitDisk(sampler.Get2D())
		origin = c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
	}

	return core.NewRayWithTime(origin, pixelSample.Subtract(origin), sampler.Get1D())
}
