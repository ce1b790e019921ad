package gcp

import "testing"

func TestPublicObjectURL(t *testing.T) {
	cases := []struct {
		name    string
		storage ObjectStorageConfig
		bucket  bucketConfig
		key     string
		want    string
	}{
		{
			name:    "gcs default",
			storage: ObjectStorageConfig{Mode: ObjectStorageModeGCS},
			bucket:  bucketConfig{name: "imgs"},
			key:     "/u1/content/a.png",
			want:    "https://storage.googleapis.com/imgs/u1/content/a.png",
		},
		{
			name:    "cdn wins",
			storage: ObjectStorageConfig{Mode: ObjectStorageModeGCS, PublicBaseURL: "http://ignored"},
			bucket:  bucketConfig{name: "imgs", cdnDomain: "cdn.example.com"},
			key:     "u1/content/a.png",
			want:    "https://cdn.example.com/u1/content/a.png",
		},
		{
			name:    "emulator media url",
			storage: ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, PublicBaseURL: "http://localhost:4443"},
			bucket:  bucketConfig{name: "imgs"},
			key:     "u1/content/a.png",
			want:    "http://localhost:4443/storage/v1/b/imgs/o/u1%2Fcontent%2Fa.png?alt=media",
		},
		{
			name:    "public base override",
			storage: ObjectStorageConfig{Mode: ObjectStorageModeGCS, PublicBaseURL: "https://files.example.com"},
			bucket:  bucketConfig{name: "imgs"},
			key:     "k.jpg",
			want:    "https://files.example.com/imgs/k.jpg",
		},
	}
	for _, tc := range cases {
		if got := publicObjectURL(tc.storage, tc.bucket, tc.key); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a.PNG":        "image/png",
		"a.jpeg":       "image/jpeg",
		"a.jpg?x=1":    "image/jpeg",
		"dir/b.webp":   "image/webp",
		"c.gif":        "image/gif",
		"d.bmp":        "",
		"no-extension": "",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("ContentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
