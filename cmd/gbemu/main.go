// Command gbemu runs a cartridge against the LR35902 core, either in a
// window or headless for automated checks.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/Yogesh9000/gbcore/internal/display"
	"github.com/Yogesh9000/gbcore/internal/machine"
)

type cliFlags struct {
	ROMPath string
	BootROM string
	Scale   int
	Title   string

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")

	// save state
	SaveStatePath string
	LoadStatePath string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to cartridge ROM (.gb)")
	flag.StringVar(&f.BootROM, "bootrom", "", "optional DMG boot ROM")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbcore", "window title")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")

	flag.StringVar(&f.SaveStatePath, "savestate", "", "write a save state here on exit")
	flag.StringVar(&f.LoadStatePath, "loadstate", "", "load a save state from here on start")
	flag.Parse()
	return f
}

func mustRead(path string) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return b
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{
		Pix:    make([]byte, len(pix)),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func runHeadless(m *machine.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		m.StepFrame()
	}
	dur := time.Since(start)

	fb := m.FramebufferRGBA()
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()

	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, 160, 144, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		got := fmt.Sprintf("%08x", crc)
		if got != expectCRC {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, expectCRC)
		}
	}
	return nil
}

func main() {
	// An unknown opcode is a programming-error panic from internal/cpu, not
	// a recoverable condition; convert it to a fatal exit here rather than
	// letting it unwind through ebiten's event loop.
	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("fatal: %v", r)
		}
	}()

	f := parseFlags()
	if f.ROMPath == "" && flag.NArg() == 2 {
		// Positional form: <boot-rom-path> <cartridge-rom-path>.
		f.BootROM, f.ROMPath = flag.Arg(0), flag.Arg(1)
	}
	if f.ROMPath == "" {
		log.Fatal("usage: gbemu [flags] <boot-rom-path> <cartridge-rom-path>, or gbemu -rom <path> [-bootrom <path>] [flags]")
	}
	rom := mustRead(f.ROMPath)
	boot := mustRead(f.BootROM)

	m, err := machine.New(rom, boot)
	if err != nil {
		log.Fatalf("machine: %v", err)
	}
	h := m.Header()
	log.Printf("ROM: %q type=%s banks=%d ram=%dB logo=%v checksum=%v",
		h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes, h.LogoValid, h.ChecksumValid)

	if f.LoadStatePath != "" {
		data := mustRead(f.LoadStatePath)
		if err := m.LoadState(data); err != nil {
			log.Fatalf("load state: %v", err)
		}
		log.Printf("loaded state: %s", f.LoadStatePath)
	}

	if f.Headless {
		if err := runHeadless(m, f.Frames, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
	} else {
		game := display.NewGame(display.Config{Title: f.Title, Scale: f.Scale}, m)
		if err := game.Run(); err != nil {
			log.Fatal(err)
		}
	}

	if f.SaveStatePath != "" {
		if err := os.WriteFile(f.SaveStatePath, m.SaveState(), 0644); err != nil {
			log.Fatalf("save state: %v", err)
		}
		log.Printf("wrote %s", f.SaveStatePath)
	}
}
