package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docuchunk/internal/service"
)

var (
	uploadContentType string

	processFileID    string
	processChunkSize int
	processOverlap   int
	processReset     bool

	chunksJSON bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [project-id] [path]",
	Short: "Store a local file under a project",
	Long: `Validates and stores a local file the same way the upload endpoint does.
The content type is taken from the file extension unless --type is given.`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

var processCmd = &cobra.Command{
	Use:   "process [project-id]",
	Short: "Chunk stored files into the chunk store",
	Long: `Extracts and chunks one stored file (--file) or every file of the project.
Zero sizes use the configured defaults.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var chunksCmd = &cobra.Command{
	Use:   "chunks [project-id]",
	Short: "List a project's stored chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadContentType, "type", "t", "", "content type of the file")

	processCmd.Flags().StringVarP(&processFileID, "file", "f", "", "stored file id (default: all files)")
	processCmd.Flags().IntVar(&processChunkSize, "chunk-size", 0, "chunk size in characters")
	processCmd.Flags().IntVar(&processOverlap, "overlap", 0, "overlap in characters")
	processCmd.Flags().BoolVar(&processReset, "reset", false, "delete the project's chunks first")

	chunksCmd.Flags().BoolVar(&chunksJSON, "json", false, "output chunks as JSON")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(chunksCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	svc, err := requireService()
	if err != nil {
		return err
	}

	projectID, path := args[0], args[1]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	contentType := uploadContentType
	if contentType == "" {
		contentType = contentTypeFor(path)
	}

	resp, err := svc.Upload(commandContext(cmd), service.UploadRequest{
		ProjectID:   projectID,
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Body:        f,
	})
	if err != nil {
		return signalFailure(err, service.SignalFileUploadFailed)
	}

	cmd.Printf("%s\n", resp.Signal)
	cmd.Printf("file_id: %s\n", resp.FileID)
	cmd.Printf("path:    %s\n", resp.FilePath)
	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	svc, err := requireService()
	if err != nil {
		return err
	}

	resp, err := svc.Process(commandContext(cmd), service.ProcessRequest{
		ProjectID:   args[0],
		FileID:      processFileID,
		ChunkSize:   processChunkSize,
		OverlapSize: processOverlap,
		DoReset:     processReset,
	})
	if err != nil {
		return signalFailure(err, service.SignalFileProcessFailed)
	}

	cmd.Printf("%s\n", resp.Signal)
	cmd.Printf("files: %d  inserted: %d  deleted: %d\n", resp.ProcessedFiles, resp.InsertedChunks, resp.DeletedChunks)
	return nil
}

func runChunks(cmd *cobra.Command, args []string) error {
	svc, err := requireService()
	if err != nil {
		return err
	}

	resp, err := svc.ListChunks(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	if chunksJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal chunks: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(resp.Chunks) == 0 {
		cmd.Println("No chunks stored.")
		return nil
	}
	for _, c := range resp.Chunks {
		cmd.Printf("[%d] %s: %s\n", c.Order, c.FileID, preview(c.Text, 60))
	}
	cmd.Println()
	s := resp.Stats
	cmd.Printf("%d chunks from %d files, length min %d / mean %.1f / p95 %d / max %d\n",
		s.Count, s.Files, s.MinLength, s.MeanLength, s.P95Length, s.MaxLength)
	return nil
}

// signalFailure reports the signal carried by err, or fallback when it carries none.
func signalFailure(err error, fallback service.Signal) error {
	signal := service.SignalOf(err)
	if signal == "" {
		signal = fallback
	}
	return fmt.Errorf("%s: %w", signal, err)
}

// contentTypeFor guesses the content type from the extension.
func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
		return t
	}
	return "application/octet-stream"
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
