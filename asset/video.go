package asset

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/valyala/bytebufferpool"

	"github.com/labelforge/labelforge-go/bucket"
	"github.com/labelforge/labelforge-go/project"
)

// uploadTypeVideo asks the platform to split the video server side.
const uploadTypeVideo = "VIDEO"

func init() {
	register(project.InputTypeVideo, func(d Deps) Importer { return &videoImporter{deps: d} })
}

// videoImporter handles the three video ingestion paths: native playback,
// server-side frame splitting, and explicit frame sequences.
type videoImporter struct {
	deps Deps
}

func (im *videoImporter) Import(ctx context.Context, projectID string, batch []Asset) error {
	var native, async, frames []*Asset
	for i := range batch {
		a := &batch[i]
		switch {
		case len(a.JSONContent) > 0:
			frames = append(frames, a)
		case nativeDisabled(*a):
			async = append(async, a)
		default:
			native = append(native, a)
		}
	}

	if err := im.importNative(ctx, projectID, native); err != nil {
		return err
	}
	if err := im.importToFrames(ctx, projectID, async); err != nil {
		return err
	}
	if err := im.importFrameSequences(ctx, projectID, frames); err != nil {
		return err
	}
	if len(async) > 0 {
		return ErrBatchImportPending
	}
	return nil
}

// nativeDisabled reports whether the caller explicitly opted out of native
// video playback.
func nativeDisabled(a Asset) bool {
	v, ok := userProcessingParameters(a)["shouldUseNativeVideo"].(bool)
	return ok && !v
}

// importNative keeps the video as a single playable asset.
func (im *videoImporter) importNative(ctx context.Context, projectID string, assets []*Asset) error {
	if len(assets) == 0 {
		return nil
	}
	if err := resolveContents(ctx, im.deps, projectID, assets, acceptPrefix("video/")); err != nil {
		return err
	}
	defaults := processingParameters{
		ShouldKeepNativeFrameRate: true,
		FramesPlayedPerSecond:     30,
		ShouldUseNativeVideo:      true,
	}
	if err := applyParameters(assets, defaults); err != nil {
		return err
	}
	return appendSync(ctx, im.deps, projectID, assets)
}

// importToFrames defers frame extraction to the platform.
func (im *videoImporter) importToFrames(ctx context.Context, projectID string, assets []*Asset) error {
	if len(assets) == 0 {
		return nil
	}
	if err := resolveContents(ctx, im.deps, projectID, assets, acceptPrefix("video/")); err != nil {
		return err
	}
	defaults := processingParameters{
		ShouldKeepNativeFrameRate: true,
		FramesPlayedPerSecond:     30,
		ShouldUseNativeVideo:      false,
	}
	if err := applyParameters(assets, defaults); err != nil {
		return err
	}
	return appendAsync(ctx, im.deps, projectID, uploadTypeVideo, assets)
}

// importFrameSequences uploads the frame map of each asset to the bucket and
// imports the asset with its jsonContent pointing at that document.
func (im *videoImporter) importFrameSequences(ctx context.Context, projectID string, assets []*Asset) error {
	if len(assets) == 0 {
		return nil
	}

	for _, a := range assets {
		if err := im.resolveFrames(ctx, projectID, a); err != nil {
			return err
		}
	}

	defaults := processingParameters{
		ShouldKeepNativeFrameRate: false,
		FramesPlayedPerSecond:     30,
		ShouldUseNativeVideo:      false,
	}
	if err := applyParameters(assets, defaults); err != nil {
		return err
	}
	return appendSync(ctx, im.deps, projectID, assets)
}

// resolveFrames uploads local frames, serializes the ordered frame map and
// stores it in the bucket.
func (im *videoImporter) resolveFrames(ctx context.Context, projectID string, a *Asset) error {
	frameURLs := make([]string, len(a.JSONContent))

	var (
		localIdx []int
		paths    []string
		mimes    []string
	)
	for i, frame := range a.JSONContent {
		if isHostedURL(frame) {
			frameURLs[i] = frame
			continue
		}
		mt, err := detectLocalMime(frame, acceptPrefix("image/"))
		if err != nil {
			return err
		}
		localIdx = append(localIdx, i)
		mimes = append(mimes, mt)
		paths = append(paths, fmt.Sprintf("projects/%s/assets/%s/frame-%d", projectID, a.ID, i))
	}

	if len(localIdx) > 0 {
		urls, err := im.deps.Store.RequestSignedURLs(ctx, paths)
		if err != nil {
			return mapForbidden(err)
		}
		uploads := make([]bucket.Upload, len(localIdx))
		for j, i := range localIdx {
			uploads[j] = bucket.Upload{URL: urls[j], Path: a.JSONContent[i], ContentType: mimes[j]}
			frameURLs[i] = urls[j]
		}
		if err := im.deps.Store.UploadAll(ctx, uploads); err != nil {
			return err
		}
	}

	doc, err := encodeFrameMap(frameURLs)
	if err != nil {
		return err
	}

	docURLs, err := im.deps.Store.RequestSignedURLs(ctx, []string{
		fmt.Sprintf("projects/%s/assets/%s/frames.json", projectID, a.ID),
	})
	if err != nil {
		return mapForbidden(err)
	}
	up := bucket.Upload{URL: docURLs[0], Data: doc, ContentType: "application/json"}
	if err := im.deps.Store.UploadAll(ctx, []bucket.Upload{up}); err != nil {
		return err
	}

	a.jsonContentURL = docURLs[0]
	return nil
}

// encodeFrameMap serializes {"0": url, "1": url, ...} through a pooled
// buffer; frame sequences can run to tens of thousands of entries.
func encodeFrameMap(frameURLs []string) ([]byte, error) {
	frameMap := make(map[string]string, len(frameURLs))
	for i, u := range frameURLs {
		frameMap[strconv.Itoa(i)] = u
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := json.NewEncoder(buf).Encode(frameMap); err != nil {
		return nil, fmt.Errorf("encode frame map: %w", err)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// applyParameters merges caller processing parameters over the path defaults
// and freezes each asset's metadata JSON.
func applyParameters(assets []*Asset, defaults processingParameters) error {
	for _, a := range assets {
		params := defaults.merge(userProcessingParameters(*a))
		meta, err := metadataJSON(*a, &params)
		if err != nil {
			return fmt.Errorf("encode metadata for %q: %w", a.ExternalID, err)
		}
		a.metadataJSON = meta
	}
	return nil
}
