package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hrygo/apptintent/internal/profile"
	"github.com/hrygo/apptintent/plugin/ai/intake"
	"github.com/hrygo/apptintent/plugin/ocr"
	"github.com/hrygo/apptintent/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "apptintent",
		Short: "Turn free-form appointment requests into structured appointments.",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), p)
		},
	}

	parseCmd = &cobra.Command{
		Use:   "parse [text...]",
		Short: "Parse one request and print the result as JSON",
		Long:  "Parse the text given as arguments, or read from stdin when none is given. With --image the text is recognized from an image first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			return parse(cmd.Context(), p, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)
	viper.SetDefault("timezone", profile.DefaultTimezone)
	viper.SetDefault("ocr-languages", profile.DefaultOCRLanguages)
	viper.SetDefault("tesseract-path", "tesseract")

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("timezone", profile.DefaultTimezone, "IANA timezone appointments are resolved in")
	flags.Bool("ocr-enabled", false, "enable image parsing with tesseract")
	flags.String("tesseract-path", "tesseract", "path to the tesseract executable")
	flags.String("tessdata-path", "", "tessdata directory")
	flags.String("ocr-languages", profile.DefaultOCRLanguages, "tesseract languages, e.g. eng+hin")
	flags.String("env-file", ".env", "dotenv file loaded before reading APPTINTENT_* variables")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")

	serveCmd.Flags().String("addr", "", "address of server")
	serveCmd.Flags().Int("port", 8081, "port of server")
	parseCmd.Flags().String("image", "", "path of an image to recognize instead of text arguments")

	for _, name := range []string{"mode", "timezone", "ocr-enabled", "tesseract-path", "tessdata-path", "ocr-languages", "env-file", "log-file"} {
		mustBind(name, flags.Lookup(name))
	}
	mustBind("addr", serveCmd.Flags().Lookup("addr"))
	mustBind("port", serveCmd.Flags().Lookup("port"))
	mustBind("image", parseCmd.Flags().Lookup("image"))

	viper.SetEnvPrefix("apptintent")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, parseCmd)
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadProfile merges APPTINTENT_* variables with flags; flags win.
func loadProfile() (*profile.Profile, error) {
	if err := loadEnvFile(viper.GetString("env-file")); err != nil {
		return nil, err
	}

	p := &profile.Profile{}
	p.FromEnv()

	p.Mode = viper.GetString("mode")
	p.Addr = viper.GetString("addr")
	p.Port = viper.GetInt("port")
	p.Version = version
	p.Timezone = viper.GetString("timezone")
	p.OCREnabled = viper.GetBool("ocr-enabled")
	p.TesseractPath = viper.GetString("tesseract-path")
	p.TessdataPath = viper.GetString("tessdata-path")
	p.OCRLanguages = viper.GetString("ocr-languages")

	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	slog.SetDefault(newLogger(p, logWriter(viper.GetString("log-file"))))
	return p, nil
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

func logWriter(path string) io.Writer {
	if path == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename: path,
		MaxSize:  64, // MB
		MaxAge:   14,
		Compress: true,
	}
}

func newLogger(p *profile.Profile, w io.Writer) *slog.Logger {
	if p.IsDev() {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func serve(ctx context.Context, p *profile.Profile) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := server.NewServer(ctx, p, slog.Default())
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}
	if err := s.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start server")
	}
	printGreetings(p)

	c := make(chan os.Signal, 1)
	// Trigger graceful shutdown on SIGINT or SIGTERM.
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	s.Shutdown(ctx)
	return nil
}

func parse(ctx context.Context, p *profile.Profile, args []string, stdin io.Reader, stdout io.Writer) error {
	pipeline, err := intake.New(intake.Config{
		Departments:              p.Departments,
		Location:                 p.Location(),
		DepartmentFuzzyThreshold: p.DepartmentFuzzyThreshold,
		DateFuzzyThreshold:       p.DateFuzzyThreshold,
		MinDepartmentConfidence:  p.MinDepartmentConfidence,
		Logger:                   slog.Default(),
	})
	if err != nil {
		return err
	}

	text, err := inputText(ctx, p, viper.GetString("image"), args, stdin)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(pipeline.Parse(ctx, text))
}

func inputText(ctx context.Context, p *profile.Profile, imagePath string, args []string, stdin io.Reader) (string, error) {
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return "", errors.Wrap(err, "failed to read image")
		}
		config := ocr.DefaultConfig()
		config.TesseractPath = p.TesseractPath
		config.DataPath = p.TessdataPath
		config.Languages = p.OCRLanguages
		return ocr.NewClient(config).ExtractText(ctx, data, http.DetectContentType(data))
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read stdin")
	}
	return string(data), nil
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("apptintent %s started successfully!\n", p.Version)
	fmt.Printf("Mode: %s, timezone: %s, OCR enabled: %t\n", p.Mode, p.Timezone, p.OCREnabled)
	if p.Addr == "" {
		fmt.Printf("Server running on port %d\n", p.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", p.Addr, p.Port)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
