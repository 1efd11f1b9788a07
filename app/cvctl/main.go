// Command cvctl is a terminal client for the CV server: it logs in, uploads
// documents and renders the formatted CV to a PDF on this machine.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/cvstudio/internal/client"
	"github.com/yoockh/cvstudio/internal/logger"
	"github.com/yoockh/cvstudio/internal/render"
	"github.com/yoockh/cvstudio/internal/validator"
)

const usage = `usage: cvctl [global flags] <command> [flags]

commands:
  register  -name -email -password [-phone]
  login     -email -password
  logout
  upload    -resume -ehs -image [-pdf] [-out dir]
  pdf       -id <cvId> [-out dir]

global flags:
`

type app struct {
	api     *client.Client
	tokens  *client.TokenStore
	session *client.Session
	log     *logrus.Logger
}

func main() {
	global := flag.NewFlagSet("cvctl", flag.ExitOnError)
	apiURL := global.String("api", envOr("CVSTUDIO_API", "http://localhost:5000/api"), "server API base URL")
	tokenFile := global.String("token-file", client.DefaultTokenPath(), "where the bearer token is kept")
	chromePath := global.String("chrome", os.Getenv("CHROME_PATH"), "Chrome/Chromium executable (empty: autodetect)")
	assetDir := global.String("assets", envOr("ASSET_DIR", "assets"), "directory holding the letterhead logos")
	timeout := global.Duration("timeout", 5*time.Minute, "HTTP timeout")
	level := global.String("log-level", "warn", "log level")
	global.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		global.PrintDefaults()
	}
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	log := logger.New(*level)
	log.SetOutput(os.Stderr)

	a := &app{
		api:    client.New(*apiURL, *timeout),
		tokens: client.NewTokenStore(*tokenFile),
		log:    log,
	}
	a.session = client.NewSession(a.api, a.tokens, render.NewChrome(*chromePath, render.LoadAssets(*assetDir), log), log)

	ctx := context.Background()
	var err error
	switch args[0] {
	case "register":
		err = a.register(ctx, args[1:])
	case "login":
		err = a.login(ctx, args[1:])
	case "logout":
		err = a.tokens.Clear()
	case "upload":
		err = a.upload(ctx, args[1:])
	case "pdf":
		err = a.pdf(ctx, args[1:])
	default:
		global.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var ae *client.APIError
		if errors.As(err, &ae) {
			for _, m := range ae.Errors {
				fmt.Fprintln(os.Stderr, "  -", m)
			}
		}
		os.Exit(1)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	var in validator.RegisterInput
	fs.StringVar(&in.Name, "name", "", "full name")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Password, "password", "", "password")
	fs.StringVar(&in.Phone, "phone", "", "phone number, digits only")
	_ = fs.Parse(args)

	acc, err := a.api.Register(ctx, in)
	if err != nil {
		return err
	}
	return a.keep(acc)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	var in validator.LoginInput
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Password, "password", "", "password")
	_ = fs.Parse(args)

	acc, err := a.api.Login(ctx, in)
	if err != nil {
		return err
	}
	return a.keep(acc)
}

func (a *app) keep(acc *client.Account) error {
	if err := a.tokens.Save(acc.Token); err != nil {
		return err
	}
	fmt.Printf("logged in as %s <%s>\n", acc.Name, acc.Email)
	return nil
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	var files client.Files
	fs.StringVar(&files.Resume, "resume", "", "resume PDF")
	fs.StringVar(&files.EHSForm, "ehs", "", "EHS form PDF")
	fs.StringVar(&files.UserImage, "image", "", "profile photo")
	withPDF := fs.Bool("pdf", false, "render the PDF after upload")
	out := fs.String("out", ".", "directory for the PDF")
	_ = fs.Parse(args)

	res, err := a.session.Submit(ctx, files)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !*withPDF {
		return nil
	}
	return a.writePDF(ctx, *out)
}

func (a *app) pdf(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pdf", flag.ExitOnError)
	id := fs.String("id", "", "CV id returned by upload")
	out := fs.String("out", ".", "directory for the PDF")
	_ = fs.Parse(args)
	if *id == "" {
		return errors.New("-id is required")
	}

	token, err := a.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return client.ErrNotLoggedIn
	}
	rec, err := a.api.GetCV(ctx, token, *id)
	if err != nil {
		var ae *client.APIError
		if errors.As(err, &ae) && ae.TokenRelated() {
			_ = a.tokens.Clear()
		}
		return err
	}
	if err := a.session.Show(rec.FormattedCV); err != nil {
		return err
	}
	return a.writePDF(ctx, *out)
}

func (a *app) writePDF(ctx context.Context, dir string) error {
	doc, err := a.session.GeneratePDF(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, doc.Name)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return err
	}
	fmt.Println("saved", path)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
