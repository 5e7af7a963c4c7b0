package main

import (
    "flag"
    "fmt"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/kiliankoe/numberhunter/internal/api"
    "github.com/kiliankoe/numberhunter/internal/config"
    "github.com/kiliankoe/numberhunter/internal/game"
    "github.com/kiliankoe/numberhunter/internal/ws"
    staticserver "github.com/kiliankoe/numberhunter/static"
    "github.com/rs/zerolog"
    zerologlog "github.com/rs/zerolog/log"
)

const version = "v1.0.0-dev"

func main() {
    var (
        showHelp    = flag.Bool("help", false, "Show help message")
        showVersion = flag.Bool("version", false, "Show version information")
        portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
        configFlag  = flag.String("config", "", "Path to a TOML or YAML config file (overrides CONFIG_FILE)")
    )
    flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
    flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
    flag.Parse()

    if *showHelp {
        fmt.Printf(`Number Hunter - click the numbers in order before they pile up

Usage: %s [options]

Options:
  -h, --help        Show this help message
  -v, --version     Show version information
  --port PORT       Port to listen on (default: 8080 or PORT env var)
  --config FILE     TOML or YAML config file

Environment Variables:
  PORT                  Port to listen on (default: 8080)
  LOG_LEVEL             zerolog level (default: info)
  HOST_USER             Username for basic auth on session creation
  HOST_PASS             Password for basic auth on session creation
  SINGLE_SESSION        Allow only one active session (default: false)
  EXPORT_ENABLED        Append finished rounds to a file (default: true)
  EXPORT_FILE           Path for exported rounds (default: ./numberhunter-results.txt)
  CONFIG_FILE           Config file, same as --config
  DEFAULT_TARGET_COUNT  Target count for new sessions (default: 50)
  SPREAD                Keep the initial board from overlapping (default: true)

Examples:
  %s                         Start server with default settings
  %s --port 3000             Start server on port 3000
  %s --config hunter.toml    Start server with a config file

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
        return
    }

    if *showVersion {
        fmt.Printf("Number Hunter %s\n", version)
        return
    }

    // zerolog setup (human-friendly console)
    zerolog.TimeFieldFormat = time.RFC3339
    cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
    zerologlog.Logger = zerologlog.Output(cw)

    cfg, err := config.Load(*configFlag)
    if err != nil {
        zerologlog.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
    }
    if *portFlag != "" {
        cfg.Port = *portFlag
    }
    if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
        zerolog.SetGlobalLevel(lvl)
    }

    // Gin setup with custom logger (skip /socket.io noise)
    gin.SetMode(gin.ReleaseMode)
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context) {
        start := time.Now()
        c.Next()
        path := c.Request.URL.Path
        if strings.HasPrefix(path, "/socket.io") {
            return
        }
        status := c.Writer.Status()
        dur := time.Since(start)
        zerologlog.Debug().Str("method", c.Request.Method).Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
    })

    // Game manager
    rm := game.NewRoomManager(
        game.WithTimings(cfg.Timings),
        game.WithSpread(cfg.Spread),
    )
    rm.SetSingleSession(cfg.SingleSession)
    if cfg.ExportEnabled {
        rm.OnRoundFinished(func(s *game.Session, res game.RoundResult) {
            logger := s.Logger()
            if err := game.ExportResult(s, res, cfg.ExportFile); err != nil {
                logger.Error().Err(err).Str("file", cfg.ExportFile).Msg("export round")
                return
            }
            logger.Info().Int("round", res.Index).Str("file", cfg.ExportFile).Msg("round exported")
        })
    }

    // REST API + Socket server
    api.New(rm, cfg).Register(r)
    sock := ws.New(rm, cfg)
    io := sock.Mount(r)

    // Serve frontend (if embedded build is present) for all other routes
    r.NoRoute(func(c *gin.Context) {
        staticserver.Handler().ServeHTTP(c.Writer, c.Request)
    })

    sig := make(chan os.Signal, 1)
    signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
    go func() {
        <-sig
        zerologlog.Info().Msg("shutting down")
        rm.CloseAll()
        _ = io.Close()
        os.Exit(0)
    }()

    zerologlog.Info().Str("port", cfg.Port).Str("version", version).Msg("listening")
    if err := r.Run(":" + cfg.Port); err != nil {
        zerologlog.Fatal().Err(err).Msg("server")
    }
}
