package recognition

import (
	"regexp"

	"github.com/UnendingLoop/FaceGallery/internal/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

const maxExternalIDLen = 255

var externalIDForbidden = regexp.MustCompile(`[^a-zA-Z0-9_.\-:]`)

// ExternalID приводит произвольную строку (ключ объекта, id от клиента) к алфавиту ExternalImageId
func ExternalID(raw string) string {
	id := externalIDForbidden.ReplaceAllString(raw, "_")
	if len(id) > maxExternalIDLen {
		id = id[:maxExternalIDLen]
	}
	return id
}

func toBoundingBox(b *types.BoundingBox) *model.BoundingBox {
	if b == nil {
		return nil
	}
	return &model.BoundingBox{
		Width:  aws.ToFloat32(b.Width),
		Height: aws.ToFloat32(b.Height),
		Left:   aws.ToFloat32(b.Left),
		Top:    aws.ToFloat32(b.Top),
	}
}

func toFace(f *types.Face) model.Face {
	return model.Face{
		FaceID:          aws.ToString(f.FaceId),
		ImageID:         aws.ToString(f.ImageId),
		ExternalImageID: aws.ToString(f.ExternalImageId),
		BoundingBox:     toBoundingBox(f.BoundingBox),
		Confidence:      aws.ToFloat32(f.Confidence),
	}
}

func toLandmarks(in []types.Landmark) []model.Landmark {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Landmark, 0, len(in))
	for _, l := range in {
		out = append(out, model.Landmark{
			Type: string(l.Type),
			X:    aws.ToFloat32(l.X),
			Y:    aws.ToFloat32(l.Y),
		})
	}
	return out
}

func toPose(p *types.Pose) *model.Pose {
	if p == nil {
		return nil
	}
	return &model.Pose{
		Roll:  aws.ToFloat32(p.Roll),
		Yaw:   aws.ToFloat32(p.Yaw),
		Pitch: aws.ToFloat32(p.Pitch),
	}
}

func toQuality(q *types.ImageQuality) *model.ImageQuality {
	if q == nil {
		return nil
	}
	return &model.ImageQuality{
		Brightness: aws.ToFloat32(q.Brightness),
		Sharpness:  aws.ToFloat32(q.Sharpness),
	}
}

func flag(value bool, confidence *float32) *model.Flag {
	return &model.Flag{Value: value, Confidence: aws.ToFloat32(confidence)}
}

func toComparedFace(f *types.ComparedFace) model.ComparedFace {
	return model.ComparedFace{
		BoundingBox: toBoundingBox(f.BoundingBox),
		Confidence:  aws.ToFloat32(f.Confidence),
		Landmarks:   toLandmarks(f.Landmarks),
		Pose:        toPose(f.Pose),
		Quality:     toQuality(f.Quality),
	}
}

func toFaceDetail(d *types.FaceDetail) *model.FaceDetail {
	if d == nil {
		return nil
	}

	res := &model.FaceDetail{
		BoundingBox: toBoundingBox(d.BoundingBox),
		Confidence:  aws.ToFloat32(d.Confidence),
		Landmarks:   toLandmarks(d.Landmarks),
		Pose:        toPose(d.Pose),
		Quality:     toQuality(d.Quality),
	}

	if d.AgeRange != nil {
		res.AgeRange = &model.AgeRange{Low: aws.ToInt32(d.AgeRange.Low), High: aws.ToInt32(d.AgeRange.High)}
	}
	if d.Gender != nil {
		res.Gender = &model.Gender{Value: string(d.Gender.Value), Confidence: aws.ToFloat32(d.Gender.Confidence)}
	}
	for _, e := range d.Emotions {
		res.Emotions = append(res.Emotions, model.Emotion{Type: string(e.Type), Confidence: aws.ToFloat32(e.Confidence)})
	}

	// атрибуты приходят только при Attributes=ALL
	if d.Smile != nil {
		res.Smile = flag(d.Smile.Value, d.Smile.Confidence)
	}
	if d.Eyeglasses != nil {
		res.Eyeglasses = flag(d.Eyeglasses.Value, d.Eyeglasses.Confidence)
	}
	if d.Sunglasses != nil {
		res.Sunglasses = flag(d.Sunglasses.Value, d.Sunglasses.Confidence)
	}
	if d.Beard != nil {
		res.Beard = flag(d.Beard.Value, d.Beard.Confidence)
	}
	if d.Mustache != nil {
		res.Mustache = flag(d.Mustache.Value, d.Mustache.Confidence)
	}
	if d.EyesOpen != nil {
		res.EyesOpen = flag(d.EyesOpen.Value, d.EyesOpen.Confidence)
	}
	if d.MouthOpen != nil {
		res.MouthOpen = flag(d.MouthOpen.Value, d.MouthOpen.Confidence)
	}

	return res
}
