package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	pricefomatter "github.com/x-xyz/mintingkit/base/price_fomatter"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
	"github.com/x-xyz/mintingkit/domain/wallet"
	"github.com/x-xyz/mintingkit/service/cache"
	"github.com/x-xyz/mintingkit/service/cache/provider/primitive"
	"github.com/x-xyz/mintingkit/service/ens"
	"github.com/x-xyz/mintingkit/service/mintapi"
	minting_usecase "github.com/x-xyz/mintingkit/stores/minting/usecase"
	project_usecase "github.com/x-xyz/mintingkit/stores/project/usecase"
	wallet_usecase "github.com/x-xyz/mintingkit/stores/wallet/usecase"
)

var (
	baseURL   = pflag.String("base-url", mintapi.DefaultBaseURL, "minting api base url")
	token     = pflag.String("token", os.Getenv("MINTINGKIT_TOKEN"), "device token, defaults to $MINTINGKIT_TOKEN")
	timeout   = pflag.Duration("timeout", 15*time.Second, "timeout of a single request")
	rpcURL    = pflag.String("ens-rpc", "", "ethereum rpc used when the api cannot resolve an ENS name")
	useSocket = pflag.Bool("socket", false, "follow mintings over the websocket instead of polling")
	debug     = pflag.Bool("debug", false, "debug logging")
)

const usage = `usage: mintctl [flags] <command> [args]

commands:
  projects                     list mintable projects
  mintable <project>           check whether a project can be minted
  resolve <wallet>             resolve an address, ethereum: payload or ENS name
  mint <project> <wallet>      mint and wait until the token is revealed
  status <minting>             show a minting
  login-url                    print the browser login page

flags:
`

func main() {
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()
	log.SetDebug(*debug)

	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	c, cancel := ctx.WithCancel(ctx.Background())
	defer cancel()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	if err := run(c, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", message(err))
		os.Exit(1)
	}
}

// message prefers the kiosk copy for failed vendor calls
func message(err error) string {
	if _, ok := mintapi.StatusCode(err); ok {
		return minting_usecase.UserMessage(err)
	}
	return err.Error()
}

func run(c ctx.Ctx, cmd string, args []string) error {
	client := mintapi.NewClient(&mintapi.ClientCfg{
		HttpClient: &http.Client{},
		BaseURL:    *baseURL,
		Timeout:    *timeout,
		Tokens:     mintapi.StaticToken(*token),
	})
	// mintctl watches in the foreground, one worker is enough
	pool := goroutines.NewPool(1)
	defer pool.Release()

	switch cmd {
	case "login-url":
		fmt.Println(client.LoginURL())
		return nil
	case "projects":
		return listProjects(c, client)
	case "mintable":
		if len(args) != 1 {
			return domain.ErrBadParamInput
		}
		return checkMintable(c, newMinting(client, pool), args[0])
	case "resolve":
		if len(args) != 1 {
			return domain.ErrBadParamInput
		}
		dest, err := newWallet(c, client).Resolve(c, args[0])
		if err != nil {
			return err
		}
		return printJSON(dest)
	case "mint":
		if len(args) != 2 {
			return domain.ErrBadParamInput
		}
		return mint(c, client, newMinting(client, pool), args[0], args[1])
	case "status":
		if len(args) != 1 {
			return domain.ErrBadParamInput
		}
		m, err := newMinting(client, pool).Get(c, args[0])
		if err != nil {
			return err
		}
		return printJSON(m)
	}
	pflag.Usage()
	return xerrors.Errorf("unknown command %q", cmd)
}

func newWallet(c ctx.Ctx, client mintapi.Client) wallet.Usecase {
	cfg := &wallet_usecase.WalletUseCaseCfg{Client: client}
	if *rpcURL != "" {
		chain, err := ens.New(*rpcURL, cache.New(cache.ServiceConfig{
			Ttl:   time.Hour,
			Pfx:   "ens",
			Cache: primitive.NewPrimitive("ens", 1),
		}))
		if err != nil {
			c.WithField("err", err).Warn("ens.New failed, on-chain fallback disabled")
		} else {
			cfg.Chain = chain
		}
	}
	return wallet_usecase.New(cfg)
}

func newMinting(client mintapi.Client, pool *goroutines.Pool) minting.Usecase {
	return minting_usecase.New(&minting_usecase.MintingUseCaseCfg{
		Client:     client,
		WorkerPool: pool,
		UseSocket:  *useSocket,
	})
}

func listProjects(c ctx.Ctx, client mintapi.Client) error {
	project := project_usecase.New(&project_usecase.ProjectUseCaseCfg{
		Client:    client,
		Formatter: pricefomatter.NewPriceFormatter("$"),
	})
	list, err := project.List(c)
	if err != nil {
		return err
	}
	for _, p := range list {
		price := project.FormatPrice(p)
		if price == "" {
			price = "free"
		}
		fmt.Printf("%s\t%s\t%s\n", p.ID, p.Title, price)
	}
	return nil
}

func checkMintable(c ctx.Ctx, mintings minting.Usecase, projectID string) error {
	res, err := mintings.CheckMintable(c, projectID)
	if err != nil {
		return err
	}
	if !res.Mintable {
		fmt.Println("not mintable:", res.Message)
		return nil
	}
	fmt.Println("mintable")
	return nil
}

// mint creates the minting directly; the cli keeps no history so nothing is persisted
func mint(c ctx.Ctx, client mintapi.Client, mintings minting.Usecase, projectID, input string) error {
	dest, err := newWallet(c, client).Resolve(c, input)
	if err != nil {
		return err
	}
	address := dest.Address

	m, err := client.CreateMinting(c, projectID, address)
	if err != nil {
		return err
	}
	fmt.Printf("minting %s to %s\n", m.ID, address)

	m, err = mintings.Watch(c, m.ID, func(p minting.Progress) {
		fmt.Printf("%d/%d confirmations", p.BlockConfirmations, minting.RenderBlockConfirmations)
		if p.ShareURL != "" {
			fmt.Printf("\t%s", p.ShareURL)
		}
		fmt.Println()
	})
	if err != nil {
		return err
	}
	fmt.Printf("revealed token #%s\n%s\n", m.TokenNumber(), strings.TrimSpace(m.EmbedURL))
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
