package cmd

import (
	"sync"

	"lever/worker"
	"lever/worker/accrual"
	"lever/worker/notifier"
	"lever/worker/priceoracle"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lever job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		propertyStore := providePropertyStore(database)
		marketStore := provideMarketStore(database)
		positionStore := providePositionStore(database)
		vaultStore := provideVaultStore(database)
		eventStore := provideEventStore(database)
		paramStore := provideParamStore(database)
		priceStore := providePriceStore(database)

		priceService := providePriceService(priceStore)
		marketService := provideMarketService(marketStore, paramStore)
		accountService := provideAccountService(marketStore, positionStore, priceService)

		eng := provideEngine(database, marketStore, positionStore, vaultStore, eventStore, paramStore, marketService, accountService, priceService)

		workers := []worker.Worker{
			priceoracle.New(&cfg.Oracle, database, marketStore, priceStore, priceService),
			notifier.New(&cfg.Notifier, database, propertyStore, eventStore, provideNotifier()),
		}

		jobs := []worker.IJob{
			accrual.New(cfg.App.Location, marketStore, eng),
		}

		for _, job := range jobs {
			if err := job.Start(); err != nil {
				log.WithError(err).Fatalln("start job")
			}
			defer job.Stop()
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
