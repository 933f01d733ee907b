package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/KaramelBytes/luxboard/internal/analysis"
	"github.com/KaramelBytes/luxboard/internal/chart"
	"github.com/KaramelBytes/luxboard/internal/logging"
	"github.com/KaramelBytes/luxboard/internal/parser"
	"github.com/KaramelBytes/luxboard/internal/session"
	"github.com/KaramelBytes/luxboard/internal/site"
)

// errNoUpload is returned by data endpoints when the session holds no file.
var errNoUpload = fiber.NewError(fiber.StatusNotFound, "no file uploaded for this session")

// -- Sessions --

// sessionID returns the caller's session. When create is set, a cookie the store
// did not issue is replaced by a fresh ID.
func (s *Server) sessionID(c *fiber.Ctx, create bool) string {
	id := c.Cookies(SessionCookie)
	if !create || (session.ValidID(id) && s.sessions.Has(id)) {
		return id
	}
	id = session.NewID()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

func (s *Server) upload(c *fiber.Ctx) (*session.Upload, bool) {
	id := s.sessionID(c, false)
	if !session.ValidID(id) {
		return nil, false
	}
	return s.sessions.Get(id)
}

// load recomputes the normalized table from the session's bytes.
func (s *Server) load(c *fiber.Ctx) (*analysis.Table, *session.Upload, error) {
	u, ok := s.upload(c)
	if !ok {
		return nil, nil, errNoUpload
	}
	t, err := parser.Load(u.Name, u.Data, s.cfg.Parser)
	if err != nil {
		return nil, u, err
	}
	return t, u, nil
}

// -- Query parsing --

func parseThresholds(c *fiber.Ctx) (analysis.Thresholds, error) {
	var th analysis.Thresholds
	for _, p := range []struct {
		key string
		dst **float64
	}{{"min", &th.Min}, {"max", &th.Max}} {
		raw := strings.TrimSpace(c.Query(p.key))
		if raw == "" {
			continue
		}
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return th, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s threshold: %q", p.key, raw))
		}
		*p.dst = &x
	}
	return th, nil
}

func parseMode(c *fiber.Ctx) (analysis.ChartMode, error) {
	m, err := analysis.ParseChartMode(c.Query("mode"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return m, nil
}

func parseTab(s string) string {
	switch s {
	case tabStats, tabFilters, tabSite:
		return s
	}
	return tabChart
}

// -- Page --

func (s *Server) basePage() *pageData {
	info := s.cfg.Site
	left, top := info.Marker()
	p := &pageData{
		Title:      "💡 Sensor de Luz",
		Tagline:    "Esta página te permite visualizar y analizar los datos capturados por un sensor de luz 📈✨",
		Site:       info,
		TileURL:    info.TileURL(),
		MarkerLeft: strconv.FormatFloat(left, 'f', 2, 64),
		MarkerTop:  strconv.FormatFloat(top, 'f', 2, 64),
		MapLink:    info.MapLink(),
		Location:   info.LocationFields(),
		Sensor:     info.SensorFields(),
		Footer:     "Desarrollado para análisis de sensores de luz • " + info.Name + " ✨",
	}
	if _, err := site.LoadAsset(s.cfg.BannerPath); err == nil {
		p.BannerURL = "/banner"
		p.BannerCaption = "Ola sensor-friendly 🌊"
	} else {
		p.BannerNotice = fmt.Sprintf("⚠️ No se encontró la imagen '%s'. Colócala en la carpeta del proyecto.", s.cfg.BannerPath)
	}
	return p
}

func (s *Server) render(c *fiber.Ctx, status int, p *pageData) error {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func uploadMessage(err error) string {
	return "Error al procesar archivo: " + err.Error()
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	p := s.basePage()
	t, u, err := s.load(c)
	if errors.Is(err, errNoUpload) {
		return s.render(c, fiber.StatusOK, p)
	}
	p.HasFile = true
	p.FileName = u.Name
	if err != nil {
		p.Error = uploadMessage(err)
		return s.render(c, fiber.StatusOK, p)
	}

	mode, err := parseMode(c)
	if err != nil {
		mode = analysis.ChartLine
		p.Notices = append(p.Notices, err.Error())
	}
	th, err := parseThresholds(c)
	if err != nil {
		p.Notices = append(p.Notices, err.Error())
	}
	st := viewState{
		Tab:        parseTab(c.Query("tab")),
		Mode:       mode,
		ShowRaw:    c.Query("raw") == "1",
		Thresholds: th,
		Version:    strconv.FormatInt(u.Uploaded.UnixNano(), 36),
	}
	views, err := analysis.DeriveViews(t, analysis.Params{Chart: mode, Thresholds: th})
	if err != nil {
		logging.Err(c.UserContext(), s.log, slog.LevelWarn, "views unavailable", err)
		p.Error = uploadMessage(err)
		return s.render(c, fiber.StatusOK, p)
	}
	p.fillViews(st, t, views)
	return s.render(c, fiber.StatusOK, p)
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	id := s.sessionID(c, true)
	fh, err := c.FormFile("file")
	if err != nil {
		p := s.basePage()
		p.Error = "Seleccione archivo CSV"
		return s.render(c, fiber.StatusBadRequest, p)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	if _, err := parser.Load(fh.Filename, data, s.cfg.Parser); err != nil {
		s.sessions.Delete(id)
		logging.Err(c.UserContext(), s.log, slog.LevelWarn, "upload rejected", err)
		p := s.basePage()
		p.Error = uploadMessage(err)
		return s.render(c, fiber.StatusUnprocessableEntity, p)
	}
	s.sessions.Put(id, &session.Upload{Name: fh.Filename, Data: data, Uploaded: time.Now()})
	s.log.Info("upload accepted", "file", fh.Filename, "bytes", len(data))
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	if id := s.sessionID(c, false); session.ValidID(id) {
		s.sessions.Delete(id)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// -- Data endpoints --

func (s *Server) handleChart(c *fiber.Ctx) error {
	mode, err := parseMode(c)
	if err != nil {
		return err
	}
	format, err := chart.ParseFormat(c.Query("format"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	t, _, err := s.load(c)
	if err != nil {
		return err
	}
	series, err := analysis.ChartSeries(t, mode)
	if err != nil {
		return err
	}
	opt := s.cfg.Chart
	opt.Format = format
	img, err := chart.Bytes(series, opt)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(img)
}

func (s *Server) filter(c *fiber.Ctx) (*analysis.Table, *analysis.FilterResult, error) {
	th, err := parseThresholds(c)
	if err != nil {
		return nil, nil, err
	}
	t, _, err := s.load(c)
	if err != nil {
		return nil, nil, err
	}
	res, err := analysis.Filter(t, th)
	if err != nil {
		return nil, nil, err
	}
	return t, res, nil
}

func (s *Server) handleDownload(c *fiber.Ctx) error {
	_, res, err := s.filter(c)
	if err != nil {
		return err
	}
	if res.Degenerate {
		return fiber.NewError(fiber.StatusConflict, res.Warning)
	}
	view := res.Lower
	switch side := c.Query("side", "lower"); side {
	case "lower":
	case "upper":
		view = res.Upper
	default:
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid side: %q (use lower or upper)", side))
	}
	// Encoded fully before any byte is sent.
	data, err := view.EncodeCSV()
	if err != nil {
		return err
	}
	c.Attachment(DownloadName)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(data)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	t, u, err := s.load(c)
	if err != nil {
		return err
	}
	sum, err := analysis.Describe(t)
	if err != nil {
		return err
	}
	return c.JSON(statsResponse{
		File:    u.Name,
		Rows:    t.Len(),
		Columns: t.Header(),
		HasTime: t.HasIndex(),
		Stats:   newStatsJSON(sum),
	})
}

func (s *Server) handleFilter(c *fiber.Ctx) error {
	_, res, err := s.filter(c)
	if err != nil {
		return err
	}
	return c.JSON(newFilterResponse(res))
}

func (s *Server) handleSite(c *fiber.Ctx) error {
	b, err := s.cfg.Site.GeoJSON()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(b)
}

func (s *Server) handleBanner(c *fiber.Ctx) error {
	a, err := site.LoadAsset(s.cfg.BannerPath)
	if errors.Is(err, site.ErrMissingAsset) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, a.ContentType)
	return c.Send(a.Data)
}

// -- Errors --

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		fe *fiber.Error
		ie *analysis.IngestionError
		ne *analysis.NormalizationError
		te *analysis.TypeError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ie), errors.As(err, &ne), errors.As(err, &te), errors.Is(err, chart.ErrNoPoints):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	level := slog.LevelWarn
	if code >= fiber.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.Err(c.UserContext(), s.log, level, "request failed", err)
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(errorResponse{Error: err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(err.Error())
}
