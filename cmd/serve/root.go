package serve

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdUtil "github.com/kvgrid/kvgrid/cmd/util"
	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/kvgrid/kvgrid/rpc/server"
)

var (
	serveCmdConfig common.ServerConfig

	// ServeCmd starts a standalone region server
	ServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "Starts a region server",
		Long: "Starts a standalone region server owning the whole keyspace of\n" +
			"every table. It also answers Locate requests with itself as the\n" +
			"owner, so clients can use its endpoint as the locator endpoint.",
		RunE:    runServer,
		PreRunE: processConfig,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(cmdUtil.InitClientConfig)

	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:7000", cmdUtil.WrapString("The address the server listens on (e.g. localhost:7000 for tcp, /tmp/kvgrid.sock for unix)"))

	key = "advertise-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address handed out in Locate responses. Defaults to the listen endpoint; set it when the server is reachable under a different name than it binds to"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int(key, 10, cmdUtil.WrapString("Per-connection read/write deadline in seconds"))

	key = "max-workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 100, cmdUtil.WrapString("Maximum concurrent request workers per connection"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional address to expose Prometheus metrics on (e.g. localhost:9100)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and
// environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig = common.ServerConfig{
		Endpoint:          viper.GetString("endpoint"),
		AdvertiseEndpoint: viper.GetString("advertise-endpoint"),
		TimeoutSecond:     viper.GetInt("timeout"),
		MaxWorkersPerConn: viper.GetInt("max-workers-per-conn"),
		MetricsEndpoint:   viper.GetString("metrics-endpoint"),
		LogLevel:          viper.GetString("log-level"),
	}

	common.InitLoggers(serveCmdConfig.LogLevel)
	return nil
}

// runServer assembles the region server from the configured transport and
// serializer and blocks serving requests
func runServer(cmd *cobra.Command, _ []string) error {
	t, err := cmdUtil.GetServerTransport(serveCmdConfig.MaxWorkersPerConn)
	if err != nil {
		return err
	}

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	return server.NewRegionServer(serveCmdConfig, t, s).Serve()
}
