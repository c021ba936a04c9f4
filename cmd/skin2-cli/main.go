// Command skin2-cli is a terminal front end for the portal: hospital search
// with paging and image recognition against a running skin2 server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ChlorophyllA/skin2/internal/client"
	"github.com/ChlorophyllA/skin2/internal/config"
	"github.com/ChlorophyllA/skin2/internal/disease"
	"github.com/ChlorophyllA/skin2/internal/logging"
	"github.com/ChlorophyllA/skin2/internal/searchui"
	"github.com/ChlorophyllA/skin2/internal/uploadui"
)

const help = `commands:
  province <text>    set the province (suggestions follow)
  pick <province>    choose a suggested province
  city <name>        select a city ("" for all)
  level <name>       select a level ("" for all)
  dept <text>        department keyword
  search             run the search from page 1
  next | prev        page through results
  jump <n>           go to page n
  reset              clear everything
  html               print the last results as markup
  recognize <file>   upload an image for recognition
  help | quit`

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	base := flag.String("base", cfg.Portal.BaseURL, "portal base URL")
	flag.Parse()

	logger := logging.Init("skin2-cli", cfg.Log)
	api, err := client.New(*base, cfg.Portal.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid portal url")
	}

	catalog := disease.Default()
	if cfg.Server.CatalogPath != "" {
		if c, err := disease.Load(cfg.Server.CatalogPath); err == nil {
			catalog = c
		} else {
			logger.Warn().Err(err).Msg("using built-in disease catalog")
		}
	}

	out := &syncWriter{w: os.Stdout}
	sv := &searchView{out: out}
	search := searchui.NewController(api, sv, logger)
	uv := &uploadView{out: out}
	upload := uploadui.NewController(api, uv, catalog, logger)

	ctx := context.Background()
	search.Load(ctx)
	upload.Reset()
	fmt.Fprintln(out, help)

	run(ctx, os.Stdin, out, search, sv, upload, logger)
}

func run(ctx context.Context, in io.Reader, out io.Writer, search *searchui.Controller, sv *searchView, upload *uploadui.Controller, logger zerolog.Logger) {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "":
		case "province":
			sv.set(func(f *searchui.Form) { f.Province = arg })
			search.InputProvince(ctx, arg)
			search.CommitProvince(ctx, arg)
		case "pick":
			search.SelectSuggestion(ctx, arg)
		case "city":
			sv.set(func(f *searchui.Form) { f.City = strings.Trim(arg, `"`) })
		case "level":
			sv.set(func(f *searchui.Form) { f.Level = strings.Trim(arg, `"`) })
		case "dept":
			sv.set(func(f *searchui.Form) { f.Departments = arg })
		case "search":
			search.Submit(ctx)
		case "next":
			search.NextPage(ctx)
		case "prev":
			search.PrevPage(ctx)
		case "jump":
			if _, ok := searchui.ParseJump(arg); !ok {
				fmt.Fprintln(out, "not a page number, going to page 1")
			}
			search.Jump(ctx, arg)
		case "reset":
			search.Reset(ctx)
		case "html":
			fmt.Fprintln(out, searchui.RenderHTML(sv.last()))
		case "recognize":
			recognize(ctx, out, upload, arg, logger)
		case "help":
			fmt.Fprintln(out, help)
		case "quit", "exit":
			return
		default:
			fmt.Fprintf(out, "unknown command %q\n", cmd)
		}
	}
}

func recognize(ctx context.Context, out io.Writer, upload *uploadui.Controller, path string, logger zerolog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "cannot read %s: %v\n", path, err)
		return
	}
	if err := upload.SelectFile(uploadui.File{Name: filepath.Base(path), Data: data}); err != nil {
		return
	}
	if err := upload.Submit(ctx); err != nil {
		logger.Debug().Err(err).Str("file", path).Msg("recognize")
	}
}
