package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"nostrid/auth/login"
	"nostrid/engine/actors"
	"nostrid/engine/library"
	"nostrid/identity/nip05"
)

func main() {
	// Various aspects of this application require global and local settings. To keep things
	// clean and tidy we put these settings in a Viper configuration.
	conf := viper.New()

	// Now we initialise this configuration with basic settings that are required on startup.
	actors.InitConfig(conf)
	// make the config accessible globally
	actors.SetConfig(conf)
	fmt.Println("CURRENT CONFIG")
	for k, v := range actors.MakeOrGetConfig().AllSettings() {
		fmt.Printf("\nKey: %s; Value: %v\n", k, v)
	}

	wallet := actors.MyWallet()
	library.LogCLI(fmt.Sprintf("Starting identityd as %s", wallet.Account), 4)

	cache := nip05.NewCache(time.Second * time.Duration(conf.GetInt64("nip05CacheTTLSeconds")))
	verifier := nip05.New(cache)
	verifier.SetTimeout(time.Second * time.Duration(conf.GetInt64("nip05FetchTimeoutSeconds")))

	relays := conf.GetStringSlice("relays")
	var primaryRelay string
	if len(relays) > 0 {
		primaryRelay = relays[0]
	}
	server := login.NewServer(
		verifier,
		nil,
		time.Second*time.Duration(conf.GetInt64("challengeTTLSeconds")),
		primaryRelay,
	)
	// serve our own well-known document so this host is its own nip05 provider
	server.RegisterName("_", wallet.Account, relays)

	httpServer := &http.Server{
		Addr:    conf.GetString("listenAddr"),
		Handler: server.Routes(),
	}
	go func() {
		library.LogCLI(fmt.Sprintf("Listening on %s", httpServer.Addr), 4)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			library.LogCLI(err.Error(), 0)
		}
	}()

	actors.SetTerminateChan(make(chan struct{}))
	go cliListener(actors.GetTerminateChan(), verifier)
	<-actors.GetTerminateChan()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		library.LogCLI(err.Error(), 2)
	}
	actors.GetWaitGroup().Wait()
	library.LogCLI("identityd has shut down", 4)
}
