// Command texelconv converts images between common file formats and raw
// packed pixel encodings.
//
// Encode an image file to a raw buffer:
//
//	texelconv --in photo.png --out photo.raw --format pq/rgb/int1010102
//
// Decode a raw buffer back to PNG:
//
//	texelconv --decode --in photo.raw --size 640x480 --format pq/rgb/int1010102 --out check.png
//
// Input images may be PNG, JPEG, GIF, BMP, TIFF or WebP. The --device flag
// selects the conversion device; "auto" prefers the GPU when a Vulkan
// adapter is present.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/pflag"

	"github.com/gogpu/texel"
	"github.com/gogpu/texel/device"
	"github.com/gogpu/texel/format"

	// Register conversion devices.
	_ "github.com/gogpu/texel/device/software"
	_ "github.com/gogpu/texel/device/wgpu"
)

// config holds the parsed command line.
type config struct {
	in       string
	out      string
	format   string
	size     string
	resize   string
	decode   bool
	device   string
	hlg      bool
	profile  string
	verbose  bool
	listOnly bool
}

func main() {
	var cfg config
	pflag.StringVarP(&cfg.in, "in", "i", "", "input file (image, or raw buffer with --decode)")
	pflag.StringVarP(&cfg.out, "out", "o", "", "output file (raw buffer, or PNG with --decode)")
	pflag.StringVarP(&cfg.format, "format", "f", "srgb/rgba/int8x4", "raw encoding as transfer/parts/bits")
	pflag.StringVar(&cfg.size, "size", "", "raw buffer extent WxH (required with --decode)")
	pflag.StringVar(&cfg.resize, "resize", "", "scale the input image to WxH before encoding")
	pflag.BoolVarP(&cfg.decode, "decode", "d", false, "decode a raw buffer to PNG")
	pflag.StringVar(&cfg.device, "device", "auto", "conversion device: auto, software or wgpu")
	pflag.BoolVar(&cfg.hlg, "identity-hlg", false, "allow the identity HLG stub")
	pflag.StringVar(&cfg.profile, "profile", "", "write a cpu or mem profile to the current directory")
	pflag.BoolVarP(&cfg.verbose, "verbose", "v", false, "debug logging")
	pflag.BoolVar(&cfg.listOnly, "devices", false, "list registered devices and exit")
	pflag.Parse()

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	texel.SetLogger(logger)

	switch cfg.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		logger.Error("unknown profile mode", "profile", cfg.profile)
		os.Exit(2)
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("texelconv failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	if cfg.listOnly {
		for _, name := range device.Available() {
			fmt.Println(name)
		}
		return nil
	}
	if cfg.in == "" || cfg.out == "" {
		return errors.New("--in and --out are required")
	}
	d, err := format.Parse(cfg.format)
	if err != nil {
		return err
	}

	dev, err := openDevice(cfg.device)
	if err != nil {
		return err
	}
	defer dev.Close()

	var opts []texel.Option
	if cfg.hlg {
		opts = append(opts, texel.WithIdentityHLG())
	}
	conv, err := texel.New(dev, opts...)
	if err != nil {
		return err
	}
	defer conv.Close()

	if cfg.decode {
		w, h, err := parseSize(cfg.size)
		if err != nil {
			return fmt.Errorf("--size: %w", err)
		}
		if err := decodeRaw(ctx, conv, cfg.in, cfg.out, texel.Layout{Width: w, Height: h}, d); err != nil {
			return err
		}
		logger.Info("decoded", "in", cfg.in, "out", cfg.out, "format", d, "size", cfg.size, "device", dev.Name())
		return nil
	}

	var rw, rh int
	if cfg.resize != "" {
		if rw, rh, err = parseSize(cfg.resize); err != nil {
			return fmt.Errorf("--resize: %w", err)
		}
	}
	n, err := encodeImage(ctx, conv, cfg.in, cfg.out, rw, rh, d)
	if err != nil {
		return err
	}
	logger.Info("encoded", "in", cfg.in, "out", cfg.out, "format", d, "bytes", n, "device", dev.Name())
	return nil
}

// openDevice returns an initialized device by registry name.
func openDevice(name string) (device.Device, error) {
	if name == "" || name == "auto" {
		return device.InitDefault()
	}
	dev := device.Get(name)
	if dev == nil {
		return nil, fmt.Errorf("%w: %q (registered: %s)", device.ErrNotAvailable, name,
			strings.Join(device.Available(), ", "))
	}
	if err := dev.Init(); err != nil {
		dev.Close()
		return nil, err
	}
	return dev, nil
}

// parseSize parses an extent such as "640x480".
func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not WxH", s)
	}
	if w, err = strconv.Atoi(ws); err != nil {
		return 0, 0, fmt.Errorf("width: %w", err)
	}
	if h, err = strconv.Atoi(hs); err != nil {
		return 0, 0, fmt.Errorf("height: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%q must be positive", s)
	}
	return w, h, nil
}
