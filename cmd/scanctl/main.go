// scanctl is the operator CLI: it enqueues scan requests and queries the
// report store without going through the worker.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/entity"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/config"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/mongodb"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/postgres"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/rabbitmq"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/usecase"
	"github.com/DHARANIVIP/Deepfake-Detection/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const usage = `usage: scanctl <command> [flags]

commands:
  submit  -video <key> [-email <addr>]   enqueue a scan request
  status  -scan <id>                     print the report for a scan
  recent  [-limit <n>]                   list the most recent reports
  delete  -scan <id>                     delete a stored report
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	exitOnErr(err)

	log, err := logger.New("warn")
	exitOnErr(err)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "submit":
		fs := flag.NewFlagSet("submit", flag.ExitOnError)
		videoKey := fs.String("video", "", "video object key or local path")
		email := fs.String("email", "", "uploader email for failure notification")
		fs.Parse(os.Args[2:])

		conn, err := amqp.Dial(cfg.RabbitMQURL)
		exitOnErr(err)
		defer conn.Close()

		pub, err := rabbitmq.NewPublisher(conn, cfg.RabbitMQExchange)
		exitOnErr(err)

		svc := usecase.NewSubmitService(rabbitmq.NewScanPublisher(pub), log)
		scanID, err := svc.Submit(ctx, entity.ScanRequestMessage{
			VideoKey:      *videoKey,
			UploaderEmail: *email,
		})
		exitOnErr(err)
		fmt.Println(scanID)

	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		scanID := fs.String("scan", "", "scan id")
		fs.Parse(os.Args[2:])
		requireArg(*scanID, "-scan")

		svc := usecase.NewReportQueryService(openStore(ctx, cfg), log)
		report, err := svc.GetStatus(ctx, *scanID)
		exitOnErr(err)
		printJSON(report)

	case "recent":
		fs := flag.NewFlagSet("recent", flag.ExitOnError)
		limit := fs.Int("limit", 10, "number of reports")
		fs.Parse(os.Args[2:])

		svc := usecase.NewReportQueryService(openStore(ctx, cfg), log)
		reports, err := svc.Recent(ctx, *limit)
		exitOnErr(err)
		printJSON(reports)

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		scanID := fs.String("scan", "", "scan id")
		fs.Parse(os.Args[2:])
		requireArg(*scanID, "-scan")

		svc := usecase.NewReportQueryService(openStore(ctx, cfg), log)
		deleted, err := svc.Delete(ctx, *scanID)
		exitOnErr(err)
		if !deleted {
			fmt.Fprintln(os.Stderr, "no report found for", *scanID)
			os.Exit(1)
		}
		fmt.Println("deleted", *scanID)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func openStore(ctx context.Context, cfg *config.Config) port.ReportStore {
	if cfg.StoreBackend == "postgres" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		exitOnErr(err)
		return postgres.NewStore(pool)
	}
	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	exitOnErr(err)
	return mongodb.NewStore(client, cfg.MongoDatabase, cfg.MongoCollection)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	exitOnErr(err)
	fmt.Println(string(data))
}

func requireArg(val, name string) {
	if val == "" {
		fmt.Fprintln(os.Stderr, name, "is required")
		os.Exit(2)
	}
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "scanctl:", err)
		os.Exit(1)
	}
}
