package camera

// Preset names accepted by --camera-preset.
const (
	PresetDefault = "default"
	PresetLow     = "low"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
)

// presetSizes overrides the default capture size. Framerate 0 keeps the
// default. Landmark accuracy drops below 640x480; most webcams fall to
// 15 FPS at 1080p.
var presetSizes = map[string]struct {
	width, height, fps, quality int
}{
	PresetDefault: {},
	PresetLow:     {width: 320, height: 240, quality: 70},
	Preset720p:    {width: 1280, height: 720},
	Preset1080p:   {width: 1920, height: 1080, fps: 15},
}

// Presets returns every preset configuration by name.
func Presets() map[string]Config {
	out := make(map[string]Config, len(presetSizes))
	for name := range presetSizes {
		out[name] = *GetPreset(name)
	}
	return out
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	p, ok := presetSizes[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	if p.width > 0 {
		cfg.Width, cfg.Height = p.width, p.height
	}
	if p.fps > 0 {
		cfg.Framerate = p.fps
	}
	if p.quality > 0 {
		cfg.Quality = p.quality
	}
	return &cfg
}
