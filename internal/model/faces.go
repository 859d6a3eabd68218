package model

// Поля повторяют форму ответов Rekognition, чтобы клиенты старых лямбд не заметили разницы.

type BoundingBox struct {
	Width  float32 `json:"Width"`
	Height float32 `json:"Height"`
	Left   float32 `json:"Left"`
	Top    float32 `json:"Top"`
}

type Landmark struct {
	Type string  `json:"Type"`
	X    float32 `json:"X"`
	Y    float32 `json:"Y"`
}

type Pose struct {
	Roll  float32 `json:"Roll"`
	Yaw   float32 `json:"Yaw"`
	Pitch float32 `json:"Pitch"`
}

type ImageQuality struct {
	Brightness float32 `json:"Brightness"`
	Sharpness  float32 `json:"Sharpness"`
}

type AgeRange struct {
	Low  int32 `json:"Low"`
	High int32 `json:"High"`
}

// Flag - бинарный атрибут лица (очки, борода, улыбка...) с уверенностью
type Flag struct {
	Value      bool    `json:"Value"`
	Confidence float32 `json:"Confidence"`
}

type Gender struct {
	Value      string  `json:"Value"`
	Confidence float32 `json:"Confidence"`
}

type Emotion struct {
	Type       string  `json:"Type"`
	Confidence float32 `json:"Confidence"`
}

type FaceDetail struct {
	BoundingBox *BoundingBox  `json:"BoundingBox,omitempty"`
	Confidence  float32       `json:"Confidence"`
	Landmarks   []Landmark    `json:"Landmarks,omitempty"`
	Pose        *Pose         `json:"Pose,omitempty"`
	Quality     *ImageQuality `json:"Quality,omitempty"`
	AgeRange    *AgeRange     `json:"AgeRange,omitempty"`
	Gender      *Gender       `json:"Gender,omitempty"`
	Emotions    []Emotion     `json:"Emotions,omitempty"`
	Smile       *Flag         `json:"Smile,omitempty"`
	Eyeglasses  *Flag         `json:"Eyeglasses,omitempty"`
	Sunglasses  *Flag         `json:"Sunglasses,omitempty"`
	Beard       *Flag         `json:"Beard,omitempty"`
	Mustache    *Flag         `json:"Mustache,omitempty"`
	EyesOpen    *Flag         `json:"EyesOpen,omitempty"`
	MouthOpen   *Flag         `json:"MouthOpen,omitempty"`
}

// Face - лицо, сохраненное в коллекции
type Face struct {
	FaceID          string       `json:"FaceId"`
	ImageID         string       `json:"ImageId,omitempty"`
	ExternalImageID string       `json:"ExternalImageId,omitempty"`
	BoundingBox     *BoundingBox `json:"BoundingBox,omitempty"`
	Confidence      float32      `json:"Confidence"`
}

type FaceRecord struct {
	Face       Face        `json:"Face"`
	FaceDetail *FaceDetail `json:"FaceDetail,omitempty"`
}

type FaceMatch struct {
	Similarity float32 `json:"Similarity"`
	Face       Face    `json:"Face"`
}

type ComparedFace struct {
	BoundingBox *BoundingBox  `json:"BoundingBox,omitempty"`
	Confidence  float32       `json:"Confidence"`
	Landmarks   []Landmark    `json:"Landmarks,omitempty"`
	Pose        *Pose         `json:"Pose,omitempty"`
	Quality     *ImageQuality `json:"Quality,omitempty"`
}

type CompareFacesMatch struct {
	Similarity float32      `json:"Similarity"`
	Face       ComparedFace `json:"Face"`
}

//---------------------

type DetectionResult struct {
	FaceDetails     []FaceDetail `json:"FaceDetails"`
	TargetImageName string       `json:"targetImageName"`
}

type IndexResult struct {
	FaceRecords      []FaceRecord `json:"FaceRecords"`
	UnindexedFaces   int          `json:"UnindexedFacesCount"`
	FaceModelVersion string       `json:"FaceModelVersion,omitempty"`
	TargetImageName  string       `json:"targetImageName"`
}

type SearchResult struct {
	SearchedFaceBoundingBox *BoundingBox `json:"SearchedFaceBoundingBox,omitempty"`
	SearchedFaceConfidence  float32      `json:"SearchedFaceConfidence"`
	FaceMatches             []FaceMatch  `json:"FaceMatches"`
	TargetImageName         string       `json:"targetImageName"`
}

type CompareResult struct {
	SourceImageFace *ComparedFace       `json:"SourceImageFace,omitempty"`
	FaceMatches     []CompareFacesMatch `json:"FaceMatches"`
	UnmatchedFaces  []ComparedFace      `json:"UnmatchedFaces"`
	TargetImageName string              `json:"targetImageName"`
}
