// Command hexthing opens a window and draws a static hexagon with Vulkan
// until the window is closed or escape is pressed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/xlab/closer"
	"golang.org/x/term"

	"hexthing/src/config"
	"hexthing/src/platform"
	"hexthing/src/render"
	"hexthing/src/render/vulkan"
	"hexthing/src/shader"
)

func init() {
	// GLFW and the presentation surface belong to the main thread.
	runtime.LockOSThread()
}

func main() {
	defer closer.Close()

	cfg, err := config.Parse("hexthing", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexthing: %v\n", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	render.SetLogger(newLogger(level))

	if err := run(cfg); err != nil {
		render.Logger().Error("exiting", "err", err)
		closer.Fatalln("hexthing:", err)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// run builds the window and GPU objects, runs the frame loop and tears
// everything down in reverse order before returning.
func run(cfg config.Config) error {
	// closer handles exit signals on its own goroutine. Its cleanup stops
	// the frame loop and waits for this function to finish the teardown on
	// the main thread.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	defer close(done)
	closer.Bind(func() {
		cancel()
		<-done
	})

	if err := platform.Init(); err != nil {
		return err
	}
	defer platform.Terminate()

	win, err := platform.NewWindow(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return err
	}
	defer win.Destroy()

	if err := vulkan.Init(platform.VulkanProcAddr()); err != nil {
		return err
	}
	inst, err := vulkan.NewInstance(win, vulkan.InstanceOptions{
		AppName:    cfg.Title,
		Validation: cfg.Debug,
	})
	if err != nil {
		return err
	}
	defer inst.Destroy()

	surface, err := inst.CreateSurface(win)
	if err != nil {
		return err
	}
	defer surface.Destroy()

	dev, err := vulkan.OpenDevice(inst, surface)
	if err != nil {
		return err
	}
	defer dev.Destroy()

	loader := shader.NewLoader()
	if cfg.ShaderDir != "" {
		loader = shader.NewDirLoader(cfg.ShaderDir)
	}
	hex := render.Hexagon(cfg.VertexShader, cfg.FragmentShader)

	r, err := render.New(dev, surface, win, shader.NewCompiler(loader), hex, cfg.Options())
	if err != nil {
		return err
	}
	runErr := r.Run(ctx)
	return errors.Join(runErr, r.Close())
}
