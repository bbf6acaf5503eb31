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
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Delay between the last change of a source file and recompilation.  Editors
// typically generate several events for a single save.
const WATCH_DEBOUNCE = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [flags] file",
	Short: "recompile a QGL2 program whenever its sources change.",
	Long: `Compile a given QGL2 file, then recompile it whenever it or any module it
	 imports changes.  Output is rewritten only when the compiled sequences change.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		options := setup(cmd)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		//
		defer stop()
		//
		os.Exit(runWatch(ctx, options, args[0], terminalStreams(options)))
	},
}

// Watcher recompiles a program whenever a source file in any directory of the
// modules it loads changes.
type watcher struct {
	options  Options
	filename string
	out      streams
	notify   *fsnotify.Watcher
	// Directories currently being watched.
	dirs map[string]bool
	// Fingerprint of the last program written, or zero if none has been.
	last uint64
}

// Watch a given file until the context is cancelled, returning the exit code.
func runWatch(ctx context.Context, options Options, filename string, out streams) int {
	notify, err := fsnotify.NewWatcher()
	//
	if err != nil {
		fmt.Fprintln(out.stderr, err)
		return EXIT_USAGE
	}
	//
	defer notify.Close()
	//
	w := &watcher{options, filename, out, notify, make(map[string]bool), 0}
	// The entry's directory is watched even when it cannot be read yet.
	if err := w.watch(filepath.Dir(filename)); err != nil {
		fmt.Fprintln(out.stderr, err)
		return EXIT_USAGE
	}
	//
	w.rebuild(ctx)
	//
	return w.loop(ctx)
}

func (p *watcher) loop(ctx context.Context) int {
	var pending <-chan time.Time
	//
	for {
		select {
		case <-ctx.Done():
			return EXIT_SUCCESS
		case event, ok := <-p.notify.Events:
			if !ok {
				return EXIT_SUCCESS
			} else if isSourceChange(event) {
				log.Debugf("%s changed (%s)", event.Name, event.Op)
				pending = time.After(WATCH_DEBOUNCE)
			}
		case err, ok := <-p.notify.Errors:
			if !ok {
				return EXIT_SUCCESS
			}
			//
			log.Warn(err)
		case <-pending:
			pending = nil
			//
			p.rebuild(ctx)
		}
	}
}

// Recompile, writing the program only if it differs from the last one written.
func (p *watcher) rebuild(ctx context.Context) {
	log.Infof("compiling %s", p.filename)
	//
	result, err := compileFile(ctx, p.options, p.filename, p.out)
	//
	if result == nil {
		return
	}
	// Pick up any newly imported modules.
	for _, file := range result.Files {
		if err := p.watch(filepath.Dir(file)); err != nil {
			log.Warn(err)
		}
	}
	//
	if err != nil {
		log.WithError(err).Warnf("rebuild of %s failed", p.filename)
		return
	} else if fingerprint := result.Program.Fingerprint(); fingerprint == p.last {
		log.Debug("sequences unchanged")
		return
	} else if err := writeProgram(p.options, result.Program, p.out.stdout, p.out.colourOut); err != nil {
		fmt.Fprintln(p.out.stderr, err)
	} else {
		p.last = fingerprint
	}
}

func (p *watcher) watch(dir string) error {
	if p.dirs[dir] {
		return nil
	} else if err := p.notify.Add(dir); err != nil {
		return err
	}
	//
	p.dirs[dir] = true
	//
	return nil
}

func isSourceChange(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".py" {
		return false
	}
	//
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) ||
		event.Has(fsnotify.Remove)
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addCompileFlags(watchCmd)
}
