// Package commands implements the sftpcli command tree.
package commands

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/ankerfs/sftp"
	"github.com/ankerfs/sftp/internal/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sftpcli",
	Short: "A command-line SFTP client",
	Long: `sftpcli drives a remote SFTP (version 3) server over SSH.

Connection settings come from flags, SFTPCLI_* environment variables,
or a config file, in that order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree. It is called by main.main().
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrf("sftpcli: %v\n", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.sftpcli.yaml)")
	pf.StringP("host", "H", "", "server host")
	pf.IntP("port", "p", 22, "server port")
	pf.StringP("user", "u", "", "login user")
	pf.String("password", "", "login password (prompted when empty and no identity is given)")
	pf.StringP("identity", "i", "", "private key file")
	pf.String("known-hosts", "", "known_hosts file for host key checking (insecure when empty)")
	pf.String("log-level", "warn", "log level: trace, debug, info, warn, error")

	for _, name := range []string{"host", "port", "user", "password", "identity", "known-hosts", "log-level"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}

	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(realpathCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".sftpcli")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("sftpcli")
	viper.AutomaticEnv()

	// Without --config, a default config file that is missing or fails to
	// load is ignored; a file named with --config must load.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			cobra.CheckErr(err)
		}
	}
}

func newLogger() (*slog.Logger, error) {
	level, ok := logger.ParseLevel(viper.GetString("log-level"))
	if !ok {
		return nil, errors.Errorf("unknown log level %q", viper.GetString("log-level"))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}

func authMethods() ([]ssh.AuthMethod, error) {
	if identity := viper.GetString("identity"); identity != "" {
		key, err := os.ReadFile(identity)
		if err != nil {
			return nil, errors.Wrap(err, "read identity file")
		}

		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.Wrap(err, "parse identity file")
		}

		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	password := viper.GetString("password")
	if password == "" {
		prompt := promptui.Prompt{
			Label: fmt.Sprintf("Password for %s@%s", viper.GetString("user"), viper.GetString("host")),
			Mask:  '*',
		}

		var err error
		password, err = prompt.Run()
		if err != nil {
			return nil, errors.Wrap(err, "read password")
		}
	}

	return []ssh.AuthMethod{ssh.Password(password)}, nil
}

func hostKeyCallback() (ssh.HostKeyCallback, error) {
	if kh := viper.GetString("known-hosts"); kh != "" {
		return knownhosts.New(kh)
	}

	return ssh.InsecureIgnoreHostKey(), nil
}

// connect dials the configured server and opens an SFTP session on it.
// The returned func tears both down.
func connect() (*sftp.Client, func(), error) {
	host := viper.GetString("host")
	user := viper.GetString("user")
	if host == "" || user == "" {
		return nil, nil, errors.New("both --host and --user are required")
	}

	auth, err := authMethods()
	if err != nil {
		return nil, nil, err
	}

	hostKey, err := hostKeyCallback()
	if err != nil {
		return nil, nil, err
	}

	addr := net.JoinHostPort(host, fmt.Sprint(viper.GetInt("port")))

	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKey,
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "dial %s", addr)
	}

	log, err := newLogger()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	cl, err := sftp.NewClient(conn, sftp.WithLogger(log))
	if err != nil {
		conn.Close()
		return nil, nil, errors.Wrap(err, "open sftp session")
	}

	return cl, func() {
		cl.Close()
		conn.Close()
	}, nil
}
