// Package cli implementa el comando chouhyo: una sesión de edición persistente en disco
// sobre el mismo espacio de trabajo que usaría una interfaz gráfica.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/application/share"
	"github.com/jhoicas/chouhyo/internal/application/workspace"
	"github.com/jhoicas/chouhyo/internal/domain/repository"
	"github.com/jhoicas/chouhyo/internal/infrastructure/csvexport"
	infrapdf "github.com/jhoicas/chouhyo/internal/infrastructure/pdf"
	"github.com/jhoicas/chouhyo/internal/infrastructure/postal"
	"github.com/jhoicas/chouhyo/internal/infrastructure/storage"
	"github.com/jhoicas/chouhyo/internal/infrastructure/xlsx"
	"github.com/jhoicas/chouhyo/pkg/config"
	"github.com/jhoicas/chouhyo/pkg/logger"
)

var version = "0.1.0"

// Options dependencias del CLI. Los campos nil se construyen a partir de Config.
type Options struct {
	Config *config.Config
	Logger *logger.Logger
	Store  repository.KeyValueStore
	Lookup workspace.AddressLookup
	Render *document.RenderUseCase
	Fs     afero.Fs // destino de render; por defecto el disco
	Now    func() time.Time
}

// session estado de una invocación.
type session struct {
	opts    Options
	dataDir string
	asJSON  bool
}

// NewRootCmd construye el árbol de comandos.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	s := &session{opts: opts}

	root := &cobra.Command{
		Use:   "chouhyo",
		Short: "帳票 - 見積書・発注書・請求書・領収書・業務委託契約書をターミナルから作成",
		Long: `chouhyo edita un documento comercial japonés (見積書, 発注書, 請求書, 領収書,
業務委託契約書) guardado como borrador local, calcula impuestos y vencimientos,
genera enlaces compartidos y exporta a PDF, XLSX o CSV (Shift_JIS).

Cada comando carga el borrador, aplica el cambio y lo vuelve a guardar junto
con los perfiles del emisor, del cliente y del banco.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.dataDir, "data-dir", opts.Config.Storage.Dir, "directorio de datos locales")
	root.PersistentFlags().BoolVar(&s.asJSON, "json", false, "salida en JSON")

	root.AddCommand(
		s.openCmd(),
		s.newCmd(),
		s.showCmd(),
		s.setCmd(),
		s.typeCmd(),
		s.itemCmd(),
		s.termsCmd(),
		s.totalsCmd(),
		s.shareCmd(),
		s.renderCmd(),
		s.lookupCmd(),
		s.forgetCmd(),
	)
	return root
}

// Execute ejecuta el CLI y devuelve el error final para que main decida el código de salida.
func Execute(ctx context.Context, opts Options, args []string, out io.Writer) error {
	root := NewRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

// ── Construcción de dependencias ──────────────────────────────────────────────

func (s *session) store() (repository.KeyValueStore, error) {
	if s.opts.Store != nil {
		return s.opts.Store, nil
	}
	if s.dataDir == "" {
		return nil, fmt.Errorf("cli: falta --data-dir")
	}
	st, err := storage.NewFileStore(s.dataDir)
	if err != nil {
		return nil, err
	}
	s.opts.Store = st
	return st, nil
}

func (s *session) lookup() workspace.AddressLookup {
	if s.opts.Lookup != nil {
		return s.opts.Lookup
	}
	cfg := s.opts.Config.Postal
	if cfg.BaseURL == "" {
		return nil
	}
	s.opts.Lookup = postal.NewZipCloudClient(cfg.BaseURL, cfg.Timeout, s.opts.Logger)
	return s.opts.Lookup
}

func (s *session) renderer() (*document.RenderUseCase, error) {
	if s.opts.Render != nil {
		return s.opts.Render, nil
	}
	pdf, err := infrapdf.NewMarotoPDFGenerator(infrapdf.Options{
		FontPath:     s.opts.Config.PDF.FontPath,
		FontBoldPath: s.opts.Config.PDF.FontBoldPath,
	})
	if err != nil {
		return nil, err
	}
	s.opts.Render = document.NewRenderUseCase(pdf, xlsx.NewExcelRenderer(), csvexport.NewShiftJISRenderer(), s.opts.Logger)
	return s.opts.Render, nil
}

// open carga el espacio de trabajo: enlace (si rawURL lo trae), borrador o valores por defecto.
func (s *session) open(ctx context.Context, rawURL string) (*workspace.Workspace, workspace.Source, error) {
	st, err := s.store()
	if err != nil {
		return nil, "", err
	}
	ws := workspace.New(workspace.Options{
		Store:  st,
		Codec:  share.NewCodec(s.opts.Now),
		Lookup: s.lookup(),
		Logger: s.opts.Logger,
		Now:    s.opts.Now,
	})
	src, err := ws.Load(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	return ws, src, nil
}

// mutate abre el espacio de trabajo, aplica fn y muestra el documento resultante.
func (s *session) mutate(cmd *cobra.Command, fn func(ctx context.Context, ws *workspace.Workspace) error) error {
	ctx := cmd.Context()
	ws, _, err := s.open(ctx, "")
	if err != nil {
		return err
	}
	if err := fn(ctx, ws); err != nil {
		return err
	}
	return s.print(cmd.OutOrStdout(), ws)
}
