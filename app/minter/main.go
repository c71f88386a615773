package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/viney-shih/goroutines"
	"google.golang.org/api/option"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/database/mongoclient"
	"github.com/x-xyz/mintingkit/base/database/redisclient"
	"github.com/x-xyz/mintingkit/base/goroutine"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/base/metrics"
	pricefomatter "github.com/x-xyz/mintingkit/base/price_fomatter"
	bValidator "github.com/x-xyz/mintingkit/base/validator"
	"github.com/x-xyz/mintingkit/domain/minting"
	"github.com/x-xyz/mintingkit/domain/payment"
	mmiddleware "github.com/x-xyz/mintingkit/middleware"
	"github.com/x-xyz/mintingkit/service/cache"
	"github.com/x-xyz/mintingkit/service/cache/provider"
	"github.com/x-xyz/mintingkit/service/cache/provider/compound"
	"github.com/x-xyz/mintingkit/service/cache/provider/primitive"
	redisProvider "github.com/x-xyz/mintingkit/service/cache/provider/redis"
	"github.com/x-xyz/mintingkit/service/discord"
	"github.com/x-xyz/mintingkit/service/ens"
	"github.com/x-xyz/mintingkit/service/mintapi"
	"github.com/x-xyz/mintingkit/service/query"
	"github.com/x-xyz/mintingkit/service/receipts"
	"github.com/x-xyz/mintingkit/service/redis"
	"github.com/x-xyz/mintingkit/service/terminal"
	hc_delivery "github.com/x-xyz/mintingkit/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/mintingkit/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/mintingkit/stores/healthcheck/usecase"
	minting_delivery "github.com/x-xyz/mintingkit/stores/minting/delivery/http"
	minting_repository "github.com/x-xyz/mintingkit/stores/minting/repository"
	minting_usecase "github.com/x-xyz/mintingkit/stores/minting/usecase"
	payment_delivery "github.com/x-xyz/mintingkit/stores/payment/delivery/http"
	payment_usecase "github.com/x-xyz/mintingkit/stores/payment/usecase"
	project_delivery "github.com/x-xyz/mintingkit/stores/project/delivery/http"
	project_usecase "github.com/x-xyz/mintingkit/stores/project/usecase"
	session_delivery "github.com/x-xyz/mintingkit/stores/session/delivery/http"
	auth_middleware "github.com/x-xyz/mintingkit/stores/session/delivery/http/middleware"
	session_repository "github.com/x-xyz/mintingkit/stores/session/repository"
	session_usecase "github.com/x-xyz/mintingkit/stores/session/usecase"
	wallet_delivery "github.com/x-xyz/mintingkit/stores/wallet/delivery/http"
	wallet_usecase "github.com/x-xyz/mintingkit/stores/wallet/usecase"
)

const localCacheSizeMB = 32

var configFile = pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")

func init() {
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.SetDebug(true)
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

// localThenRedis keeps hot entries in process memory in front of the shared redis
func localThenRedis(name string, redisCache redis.Service) provider.Provider {
	return compound.NewCompound([]provider.Provider{
		primitive.NewPrimitive(name, localCacheSizeMB),
		redisProvider.NewRedis(redisCache),
	})
}

func mustNotifier(context ctx.Ctx) minting.Notifier {
	if !viper.GetBool("discord.enabled") {
		return nil
	}
	notifier, err := discord.New(discord.Config{
		BotKey:    viper.GetString("discord.botKey"),
		ChannelId: viper.GetString("discord.channelId"),
	})
	if err != nil {
		context.WithField("err", err).Panic("discord.New failed")
	}
	return notifier
}

func mustArchive(context ctx.Ctx) minting.ReceiptArchive {
	if !viper.GetBool("receipts.enabled") {
		return nil
	}
	opts := []option.ClientOption{}
	if f := viper.GetString("receipts.credentialsFile"); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	client, err := storage.NewClient(context, opts...)
	if err != nil {
		context.WithField("err", err).Panic("storage.NewClient failed")
	}
	archive, err := receipts.New(&receipts.Cfg{
		Timeout:    viper.GetDuration("receipts.timeout"),
		Client:     client,
		BucketName: viper.GetString("receipts.bucket"),
		Url:        viper.GetString("receipts.url"),
	})
	if err != nil {
		context.WithField("err", err).Panic("receipts.New failed")
	}
	return archive
}

//	@title			MintingKit Kiosk API
//	@version		1.0
//	@description	Kiosk API minting vendor projects on behalf of walk-up collectors.

// main
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				retrieve token from #/session/post_session_callback and apply with `bearer {token}`
func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	mongoClient := mongoclient.MustConnectMongoClient(mongoclient.Config{
		URI:                viper.GetString("mongo.uri"),
		AuthDBName:         viper.GetString("mongo.authDBName"),
		DBName:             viper.GetString("mongo.dbName"),
		EnableSSL:          viper.GetBool("mongo.enableSSL"),
		PoolSizeMultiplier: 2,
	})
	q := query.New(mongoClient)
	if viper.GetBool("mongo.checkIndex") {
		if err := minting_repository.EnsureIndexes(context, q); err != nil {
			context.WithField("err", err).Panic("EnsureIndexes failed")
		}
	}

	// init Redis service
	context.Info("init redis")
	redisName := viper.GetString("redis.name")
	redisPool := redisclient.MustConnectRedis(viper.GetString("redis.uri"), viper.GetString("redis.password"), redisclient.RedisParam{
		PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
		Retry:          true,
	})
	redisCache := redis.New(redisName, metrics.New(redisName), redisPool)
	mmiddleware.SetupCache(redisCache)

	// session first, the vendor client reads its token from it
	deviceID := viper.GetString("kiosk.deviceId")
	sessionRepo := session_repository.New(redisCache, deviceID)
	baseURL := viper.GetString("mintapi.baseUrl")
	operatorPin := viper.GetString("kiosk.operatorPin")
	if operatorPin == "" {
		context.Warn("kiosk.operatorPin is empty, sessions can not be restored")
	}
	session := session_usecase.New(&session_usecase.SessionUseCaseCfg{
		Repo:          sessionRepo,
		Unlocker:      session_usecase.PinUnlocker{Pin: operatorPin},
		LoginURL:      mintapi.LoginURL(baseURL),
		JwtSecret:     viper.GetString("jwt.secret"),
		DeviceID:      deviceID,
		KioskTokenTTL: viper.GetDuration("jwt.ttl"),
	})
	client := mintapi.NewClient(&mintapi.ClientCfg{
		HttpClient: &http.Client{},
		BaseURL:    baseURL,
		Timeout:    viper.GetDuration("mintapi.timeout"),
		Tokens:     session,
	})

	// ens on ethereum, only when an rpc is configured
	var chainENS ens.ENS
	if rpc := viper.GetString("ens.rpcUrl"); rpc != "" {
		ensCache := cache.New(cache.ServiceConfig{
			Ttl:   viper.GetDuration("ens.cacheTtl"),
			Pfx:   "ens",
			Cache: localThenRedis("ens", redisCache),
		})
		var err error
		if chainENS, err = ens.New(rpc, ensCache); err != nil {
			context.WithField("err", err).Warn("ens started with error, on-chain fallback disabled")
			chainENS = nil
		}
	}

	walletCache := cache.New(cache.ServiceConfig{
		Ttl:   viper.GetDuration("wallet.cacheTtl"),
		Pfx:   "wallet",
		Cache: localThenRedis("wallet", redisCache),
	})
	projectCache := cache.New(cache.ServiceConfig{
		Ttl:   project_usecase.DefaultCacheTtl,
		Pfx:   "project",
		Cache: primitive.NewPrimitive("project", localCacheSizeMB),
	})

	workerPool := goroutines.NewPool(
		viper.GetInt("minting.watchers"),
		goroutines.WithTaskQueueLength(viper.GetInt("minting.watchQueue")),
		goroutines.WithPreAllocWorkers(4),
	)
	defer workerPool.Release()

	// card reader
	declineAmounts := []int64{}
	for _, amount := range viper.GetIntSlice("terminal.declineAmounts") {
		declineAmounts = append(declineAmounts, int64(amount))
	}
	reader := terminal.NewSimulated(terminal.SimulatedConfig{
		DeviceType:     payment.DeviceType(viper.GetString("terminal.deviceType")),
		DeclineAmounts: declineAmounts,
	})
	if viper.GetBool("terminal.connectOnStart") {
		if err := reader.Connect(context, client); err != nil {
			context.WithField("err", err).Warn("card reader not connected")
		}
	}

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	mintingRepo := minting_repository.New(q)

	hc := hc_usecase.New(hcRepo, client)
	project := project_usecase.New(&project_usecase.ProjectUseCaseCfg{
		Client:    client,
		Cache:     projectCache,
		Formatter: pricefomatter.NewPriceFormatter(viper.GetString("kiosk.currencySymbol")),
	})
	wallet := wallet_usecase.New(&wallet_usecase.WalletUseCaseCfg{
		Client: client,
		Chain:  chainENS,
		Cache:  walletCache,
	})
	mintingUC := minting_usecase.New(&minting_usecase.MintingUseCaseCfg{
		Client:       client,
		Repo:         mintingRepo,
		Notifier:     mustNotifier(context),
		Archive:      mustArchive(context),
		WorkerPool:   workerPool,
		WatchTimeout: viper.GetDuration("minting.watchTimeout"),
		UseSocket:    viper.GetBool("minting.useSocket"),
	})
	paymentUC := payment_usecase.New(&payment_usecase.PaymentUseCaseCfg{
		Project:       project,
		Backend:       reader.Track(client),
		Reader:        reader,
		CaptureMethod: payment.CaptureMethod(viper.GetString("terminal.captureMethod")),
	})

	auth_middleware := auth_middleware.New(session)
	hc_delivery.New(e, hc)
	session_delivery.New(e, session, auth_middleware)
	project_delivery.New(e, project, auth_middleware)
	wallet_delivery.New(e, wallet, auth_middleware)
	minting_delivery.New(e, mintingUC, auth_middleware)
	payment_delivery.New(e, paymentUC, auth_middleware)

	goroutine.RecoverableGo(func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	})

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
