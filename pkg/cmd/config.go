// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/qgl2/go-qgl2/pkg/qgl2/compiler"
	"github.com/qgl2/go-qgl2/pkg/qgl2/sequence"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Prefix of environment variables which configure the compiler.
const ENV_PREFIX = "QGL2"

// Name of the configuration file searched for in the working directory, when
// none is given explicitly.
const CONFIG_NAME = "qgl2"

// Format which renders sequences side by side, for viewing in a terminal.
const TABLE_FORMAT = "table"

// Options captures all settings of a compiler run, as drawn from (in order of
// precedence) command-line flags, environment variables and a configuration
// file.
type Options struct {
	Main           string
	Path           []string
	Intrinsics     []string
	MaxInlineDepth uint
	Format         string
	Output         string
	Verbose        bool
	Color          bool
	// Whether colour was explicitly requested, rather than defaulted.
	ForceColor bool
}

// Config returns the compiler configuration for a given entry file.
func (p *Options) Config(entry string) compiler.Config {
	config := compiler.DefaultConfig(entry)
	config.Main = p.Main
	config.Path = p.Path
	config.MaxInlineDepth = p.MaxInlineDepth
	//
	if len(p.Intrinsics) > 0 {
		config.Intrinsics = p.Intrinsics
	}
	//
	return config
}

// Keys of all options which are bound to flags.
var optionKeys = []string{"main", "path", "intrinsics", "max-inline-depth", "format", "output", "verbose", "color"}

// Add the flags shared by all compiling commands.
func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().String("main", "", "name of the entry function (overrides @qgl2main)")
	cmd.Flags().StringSlice("path", nil, "additional directories to search for modules")
	cmd.Flags().StringSlice("intrinsics", compiler.DEFAULT_INTRINSICS, "modules whose names are primitives")
	cmd.Flags().Uint("max-inline-depth", compiler.DEFAULT_MAX_INLINE_DEPTH, "maximum depth of inlined calls")
	cmd.Flags().StringP("format", "f", sequence.TEXT_FORMAT, "output format (text, json, toml or table)")
	cmd.Flags().StringP("output", "o", "", "write output to file rather than stdout")
}

// Load the options for a given command.  Flags are bound to viper, such that
// each may also be given by an environment variable (e.g. QGL2_MAX_INLINE_DEPTH)
// or in a configuration file.
func loadOptions(cmd *cobra.Command) (Options, error) {
	var (
		v       = viper.New()
		options Options
	)
	//
	v.SetEnvPrefix(ENV_PREFIX)
	v.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	//
	for _, key := range optionKeys {
		if flag := cmd.Flags().Lookup(key); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return options, errors.Wrapf(err, "cannot bind flag %s", key)
			}
		}
	}
	//
	var config string
	//
	if flag := cmd.Flags().Lookup("config"); flag != nil {
		config = flag.Value.String()
	}
	//
	if err := readConfigFile(v, config); err != nil {
		return options, err
	}
	//
	options = Options{
		Main:           v.GetString("main"),
		Path:           v.GetStringSlice("path"),
		Intrinsics:     v.GetStringSlice("intrinsics"),
		MaxInlineDepth: uint(max(v.GetInt("max-inline-depth"), 0)),
		Format:         v.GetString("format"),
		Output:         v.GetString("output"),
		Verbose:        v.GetBool("verbose"),
		Color:          v.GetBool("color"),
		ForceColor:     colourIsSet(cmd, v),
	}
	//
	if options.Format == "" {
		options.Format = sequence.TEXT_FORMAT
	}
	//
	return options, checkFormat(options.Format)
}

// Read a configuration file, if one was given or one exists in the working
// directory.
func readConfigFile(v *viper.Viper, filename string) error {
	if filename != "" {
		v.SetConfigFile(filename)
	} else {
		v.SetConfigName(CONFIG_NAME)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	//
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && filename == "" {
			return nil
		}
		//
		return errors.Wrap(err, "cannot read configuration")
	}
	//
	return nil
}

// Determine whether colour was given explicitly, rather than falling back on
// the flag default.
func colourIsSet(cmd *cobra.Command, v *viper.Viper) bool {
	if flag := cmd.Flags().Lookup("color"); flag != nil && flag.Changed {
		return true
	} else if _, ok := os.LookupEnv(ENV_PREFIX + "_COLOR"); ok {
		return true
	}
	//
	return v.InConfig("color")
}

func checkFormat(format string) error {
	if format == TABLE_FORMAT {
		return nil
	}
	//
	for _, f := range sequence.FORMATS {
		if f == format {
			return nil
		}
	}
	//
	return errors.Errorf("unknown output format %q", format)
}
