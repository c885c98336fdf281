package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"facedetection/internal/models"
	"facedetection/internal/services/ai"
	"facedetection/internal/services/media"
	"facedetection/internal/services/storage"

	"github.com/spf13/cobra"
)

var (
	annotatePath string
	compress     bool
)

var detectCmd = &cobra.Command{
	Use:   "detect <file-or-ref>...",
	Short: "Detect faces in images and print their bounding boxes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&annotatePath, "annotate", "", "Write the last image with faces drawn on it to this JPEG file")
	detectCmd.Flags().BoolVar(&compress, "compress", false, "Downscale large images into the cache before detection")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	eng, err := ai.NewEngine(cfg)
	if err != nil {
		return err
	}
	detector := ai.NewDetectorService(eng, log)
	defer detector.Close()

	resolver := media.NewResolver(store, cfg, log)
	compressor := storage.NewCompressor(storage.NewCacheService(cfg, log), cfg)
	out := cmd.OutOrStdout()

	failed := 0
	for _, arg := range args {
		path, ok := resolver.Resolve(cmd.Context(), arg)
		if !ok {
			fmt.Fprintf(out, "%s: cannot resolve\n", arg)
			failed++
			continue
		}

		if compress {
			if path, err = compressor.Compress(path); err != nil {
				log.Warning("Compression skipped for %s: %v", path, err)
			}
		}

		start := time.Now()
		faces := detector.Detect(path)
		elapsed := time.Since(start)

		if faces == nil {
			fmt.Fprintf(out, "%s: no usable result\n", path)
			failed++
			continue
		}

		printFaces(out, path, faces, elapsed)

		if annotatePath != "" {
			image, err := detector.Annotate(path, faces)
			if err != nil {
				return err
			}
			if err := os.WriteFile(annotatePath, image, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", annotatePath, err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d image(s) failed", failed, len(args))
	}
	return nil
}

func printFaces(out io.Writer, path string, faces []models.Face, elapsed time.Duration) {
	size := "unknown"
	if w, h, err := storage.ImageSize(path); err == nil {
		size = fmt.Sprintf("%dx%d", w, h)
	}

	fmt.Fprintf(out, "%s\n", path)
	fmt.Fprintf(out, "  image size: %s, file size: %s, faces: %d, detect time: %dms\n",
		size, storage.FormatFileSize(path), len(faces), elapsed.Milliseconds())

	if len(faces) == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "  CONFIDENCE\tX\tY\tWIDTH\tHEIGHT\tANGLE")
	for _, f := range faces {
		fmt.Fprintf(w, "  %d\t%d\t%d\t%d\t%d\t%d\n", f.Confidence, f.Rect.X, f.Rect.Y, f.Rect.Width, f.Rect.Height, f.Angle)
	}
	w.Flush()
}
