// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/alexandremahdhaoui/shipforge/internal/catalog"
	"github.com/alexandremahdhaoui/shipforge/internal/cmdutil"
	"github.com/alexandremahdhaoui/shipforge/internal/ghcli"
	"github.com/alexandremahdhaoui/shipforge/internal/gitcli"
	"github.com/alexandremahdhaoui/shipforge/internal/manifest"
	"github.com/alexandremahdhaoui/shipforge/internal/release"
	"github.com/alexandremahdhaoui/shipforge/internal/runstore"
	"github.com/alexandremahdhaoui/shipforge/internal/semvercalc"
	"github.com/alexandremahdhaoui/shipforge/pkg/flaterrors"
	"github.com/alexandremahdhaoui/shipforge/pkg/shipforge"
)

var (
	errInferringVersion  = errors.New("failed to infer next version")
	errBumpingManifest   = errors.New("failed to bump manifest")
	errCatalogingRelease = errors.New("failed to catalog release artifacts")
)

func newGit() gitcli.Git {
	return gitcli.New(cmdutil.ExecRunner{})
}

func newHosting() ghcli.Hosting {
	return ghcli.New(cmdutil.ExecRunner{})
}

// nextVersion recomputes the release version from the live state of
// refs and the manifest. Steps re-derive nothing in memory: each CI job
// starts from this query.
func nextVersion(git gitcli.Git, spec shipforge.Spec) (string, error) {
	latestTag, err := git.LatestTag()
	if err != nil {
		return "", flaterrors.Join(err, errInferringVersion)
	}

	current, err := manifest.ReadVersion(spec.Manifest.Path)
	if err != nil {
		return "", flaterrors.Join(err, errInferringVersion)
	}

	next, err := semvercalc.Next(latestTag, current)
	if err != nil {
		return "", flaterrors.Join(err, errInferringVersion)
	}

	if latestTag == "" {
		log.Printf("No release tag found, first release: %s", next)
	} else {
		log.Printf("Latest tag %s, manifest %s -> next version %s", latestTag, current, next)
	}

	return next, nil
}

func runNextVersion() error {
	spec, err := loadSpec()
	if err != nil {
		return err
	}

	next, err := nextVersion(newGit(), spec)
	if err != nil {
		return err
	}

	fmt.Println(next)
	return nil
}

func requireVersionArg(args []string, subcommand string) (string, error) {
	if len(args) < 1 || args[0] == "" {
		return "", fmt.Errorf("%s: version argument required", subcommand)
	}
	return args[0], nil
}

func runBranch(args []string) error {
	version, err := requireVersionArg(args, "branch")
	if err != nil {
		return err
	}

	spec, err := loadSpec()
	if err != nil {
		return err
	}

	version, err = release.EnsureBranch(newGit(), spec.Remote, version)
	if err != nil {
		return err
	}

	fmt.Println(version)
	return nil
}

func bump(git gitcli.Git, spec shipforge.Spec, version string) error {
	files, err := manifest.Updater{
		ManifestPath: spec.Manifest.Path,
		LockPath:     spec.Manifest.Lockfile,
		Resolver:     spec.Manifest.Resolver,
		Runner:       cmdutil.ExecRunner{},
	}.Update(version)
	if err != nil {
		return flaterrors.Join(err, errBumpingManifest)
	}

	if err := release.PublishCommit(git, spec.Remote, files,
		fmt.Sprintf("Bump version to %s", version)); err != nil {
		return flaterrors.Join(err, errBumpingManifest)
	}

	return nil
}

func runBump(args []string) error {
	version, err := requireVersionArg(args, "bump")
	if err != nil {
		return err
	}

	spec, err := loadSpec()
	if err != nil {
		return err
	}

	if err := bump(newGit(), spec, version); err != nil {
		return err
	}

	fmt.Println(version)
	return nil
}

func runCatalog(args []string) error {
	version, err := requireVersionArg(args, "catalog")
	if err != nil {
		return err
	}

	spec, err := loadSpec()
	if err != nil {
		return err
	}

	files, err := catalog.Generate(catalog.Input{
		Version:       version,
		ProjectName:   spec.Name,
		ArtifactsRoot: spec.Artifacts.Root,
		DataDir:       spec.Artifacts.DataDir,
		ArchiveExt:    spec.Artifacts.ArchiveExt,
		HashSuffix:    spec.Artifacts.HashSuffix,
	})
	if err != nil {
		return flaterrors.Join(err, errCatalogingRelease)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no archives found under %s", errCatalogingRelease, spec.Artifacts.Root)
	}

	if err := release.PublishCommit(newGit(), spec.Remote, files,
		fmt.Sprintf("Add install metadata for %s", version)); err != nil {
		return flaterrors.Join(err, errCatalogingRelease)
	}

	fmt.Println(version)
	return nil
}

func runPublish(args []string) error {
	version, err := requireVersionArg(args, "publish")
	if err != nil {
		return err
	}

	if err := release.PublishRelease(newHosting(), version); err != nil {
		return err
	}

	fmt.Println(version)
	return nil
}

func runUpload(args []string) error {
	version, err := requireVersionArg(args, "upload")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("upload: at least one file required")
	}

	return newHosting().UploadReleaseAssets(release.Tag(version), args[1:])
}

func runUploadRun(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("upload-run: at least one file required")
	}

	spec, err := loadSpec()
	if err != nil {
		return err
	}
	if spec.RunStore == nil {
		return fmt.Errorf("upload-run: no runStore configured in release spec")
	}

	envs, err := parseEnvs()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := newRunStore(ctx, spec, envs)
	if err != nil {
		return err
	}

	runID, err := store.Upload(ctx, envs.RunID, args)
	if err != nil {
		return err
	}

	fmt.Println(runID)
	return nil
}

func runDownloadRun(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("download-run: run-id and pattern arguments required")
	}
	runID, pattern := args[0], args[1]

	spec, err := loadSpec()
	if err != nil {
		return err
	}

	// GitHub-hosted runs go through gh; otherwise the configured
	// S3-compatible run store is the source.
	if spec.RunStore == nil {
		return newHosting().DownloadRunArtifacts(runID, pattern, spec.Artifacts.Root)
	}

	envs, err := parseEnvs()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := newRunStore(ctx, spec, envs)
	if err != nil {
		return err
	}

	files, err := store.Download(ctx, runID, pattern, spec.Artifacts.Root)
	if err != nil {
		return err
	}

	log.Printf("Downloaded %d artifact(s) into %s", len(files), spec.Artifacts.Root)
	return nil
}

func newRunStore(ctx context.Context, spec shipforge.Spec, envs Envs) (*runstore.Store, error) {
	rs := spec.RunStore
	if envs.RunStoreAccessKeyID != "" {
		return runstore.NewWithStaticCredentials(ctx,
			rs.Endpoint, rs.Region, rs.Bucket,
			envs.RunStoreAccessKeyID, envs.RunStoreSecretAccessKey)
	}
	return runstore.New(ctx, rs.Endpoint, rs.Region, rs.Bucket)
}

func runFinalize(args []string) error {
	version, err := requireVersionArg(args, "finalize")
	if err != nil {
		return err
	}

	spec, err := loadSpec()
	if err != nil {
		return err
	}

	return release.Finalize(newGit(), spec.Remote, spec.Trunk, version)
}

// runPipeline chains the local preparation steps: version inference,
// branch reconciliation, and the manifest bump. The later steps (catalog,
// publish, upload, finalize) run in their own CI jobs once the build
// matrix has produced archives.
func runPipeline() error {
	spec, err := loadSpec()
	if err != nil {
		return err
	}

	git := newGit()

	version, err := nextVersion(git, spec)
	if err != nil {
		return err
	}

	if _, err := release.EnsureBranch(git, spec.Remote, version); err != nil {
		return err
	}

	if err := bump(git, spec, version); err != nil {
		return err
	}

	fmt.Println(version)
	return nil
}
