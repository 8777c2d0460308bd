package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/go-resty/resty/v2"
	domainTodo "github.com/listwise/backend/internal/domain/todo"
	"github.com/listwise/backend/internal/infrastructure/log"
	"github.com/listwise/backend/internal/infrastructure/storage"
)

// backgroundPrompt 背景图生成提示词，待办标题列表附加在其后
const backgroundPrompt = `create a background image that is cohesive and constrained based on this list of todos, the image must be completely monochromatic using the colors #f5f5f5 and #b83f45, and must be so slight that you almost don't notice the image. It will be used in the background and should not draw attention whatsoever. Should be a repeatable pattern in both directions that is completely seamless when repeated. Must be overlaid with an even layer of exactly rgba(245,245,245,0.7).`

// backgroundImageSize 生成尺寸
const backgroundImageSize = "1024x1024"

// ImageGenerator 图片生成客户端
// 返回的 URL 是临时的，必须下载后自行持久化
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) (string, error)
}

// ImageService 清单背景图服务
// 指令处理成功后在后台重新生成背景图。更新顺序是约束：
// 新图落库并更新引用之后才删除旧图，中途崩溃最多留下孤儿 blob，
// 不会让清单引用一张已删除的图
type ImageService struct {
	lists      domainTodo.ListRepository
	blobs      storage.BlobStore
	generator  ImageGenerator
	downloader *resty.Client
	logger     *slog.Logger
}

// NewImageService 创建背景图服务
func NewImageService(
	lists domainTodo.ListRepository,
	blobs storage.BlobStore,
	generator ImageGenerator,
) *ImageService {
	return &ImageService{
		lists:     lists,
		blobs:     blobs,
		generator: generator,
		downloader: resty.New().
			SetTimeout(60 * time.Second).
			SetRetryCount(2),
		logger: log.NewModuleLogger("todo", "image"),
	}
}

// Regenerate 为清单重新生成背景图
// 新清单为空时整体跳过：不调用生成、不更新引用、不动旧图
func (s *ImageService) Regenerate(ctx context.Context, listID string, items []domainTodo.SnapshotItem) error {
	if len(items) == 0 {
		return nil
	}

	list, err := s.lists.Get(listID)
	if err != nil {
		return err
	}
	if list == nil {
		// 清单在调度后被删除，无事可做
		return nil
	}
	previousBlobID := list.BackgroundImageID

	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	prompt := fmt.Sprintf("%s\n\n%s", backgroundPrompt, strings.Join(titles, "\n"))

	imageURL, err := s.generator.GenerateImage(ctx, prompt, backgroundImageSize)
	if err != nil {
		return fmt.Errorf("failed to generate background image: %w", err)
	}

	blobID, err := s.download(ctx, imageURL)
	if err != nil {
		return err
	}

	if err := s.lists.SetBackgroundImage(listID, &blobID); err != nil {
		return fmt.Errorf("failed to update background image reference: %w", err)
	}

	// 引用已指向新图，旧图此刻才可以安全删除
	if previousBlobID != nil {
		if err := s.blobs.Delete(*previousBlobID); err != nil {
			s.logger.Warn("Failed to delete previous background image",
				"blob_id", *previousBlobID,
				"error", err,
			)
		}
	}

	s.logger.Info("Background image regenerated",
		"list_id", listID,
		"blob_id", blobID,
	)
	return nil
}

// download 下载生成的图片并持久化为 blob
func (s *ImageService) download(ctx context.Context, imageURL string) (string, error) {
	resp, err := s.downloader.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("failed to download image: status %d", resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	blobID, err := s.blobs.Store(contentType, resp.Body())
	if err != nil {
		return "", fmt.Errorf("failed to store image blob: %w", err)
	}
	return blobID, nil
}
