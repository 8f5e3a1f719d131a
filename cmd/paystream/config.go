package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/KSimonJNR/paystream/types"
	"github.com/KSimonJNR/paystream/utils"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// TOML keys are the snake_case field names. Unknown keys are an error.
var tomlSettings = toml.Config{
	NormFieldName: toml.DefaultConfig.NormFieldName,
	FieldToKey:    toml.DefaultConfig.FieldToKey,
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

func loadConfigFile(file string, cfg *utils.FileConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// resolveConfig reads the config file, if any, and lets flags and their
// environment variables override it.
func resolveConfig(ctx *cli.Context) (*types.Config, error) {
	var fc utils.FileConfig

	if file := ctx.String(configFlag.Name); file != "" {
		if err := loadConfigFile(file, &fc); err != nil {
			return nil, &types.Error{
				Code:    types.ErrConfigError,
				Message: fmt.Sprintf("failed to load config: %v", err),
			}
		}
	}

	applyFlags(ctx, &fc)
	return fc.ToConfig()
}

func applyFlags(ctx *cli.Context, fc *utils.FileConfig) {
	setString := func(flag *cli.StringFlag, dst *string) {
		if ctx.IsSet(flag.Name) || *dst == "" {
			if v := ctx.String(flag.Name); v != "" {
				*dst = v
			}
		}
	}

	setString(networkFlag, &fc.Network)
	setString(nodeURLFlag, &fc.NodeURL)
	setString(walletURLFlag, &fc.WalletURL)
	setString(abiDirFlag, &fc.ABIDir)
	setString(logLevelFlag, &fc.LogLevel)

	// An explicit --deployment file replaces an inline table from the config.
	if ctx.IsSet(deploymentFlag.Name) {
		fc.Deployment = nil
		fc.DeploymentFile = ctx.String(deploymentFlag.Name)
	} else if fc.DeploymentFile == "" {
		fc.DeploymentFile = ctx.String(deploymentFlag.Name)
	}

	if ctx.IsSet(decimalsFlag.Name) {
		d := ctx.Int(decimalsFlag.Name)
		fc.Decimals = &d
	}
	if ctx.IsSet(timeoutFlag.Name) {
		fc.Timeout = ctx.Duration(timeoutFlag.Name).String()
	}
	if ctx.IsSet(pollIntervalFlag.Name) {
		fc.PollInterval = ctx.Duration(pollIntervalFlag.Name).String()
	}
}
