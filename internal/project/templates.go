package project

import "github.com/piwi3910/circlepack/internal/model"

// SaveTemplates writes the template store to path.
func SaveTemplates(path string, store model.TemplateStore) error {
	return writeJSON(path, store)
}

// LoadTemplates reads a template store. A missing file is an empty store.
func LoadTemplates(path string) (model.TemplateStore, error) {
	store := model.NewTemplateStore()
	if _, err := readJSON(path, &store); err != nil {
		return model.TemplateStore{}, err
	}
	if store.Templates == nil {
		store.Templates = []model.ProjectTemplate{}
	}
	return store, nil
}

func LoadDefaultTemplates() (model.TemplateStore, error) {
	return LoadTemplates(DefaultTemplatePath())
}

func SaveDefaultTemplates(store model.TemplateStore) error {
	return SaveTemplates(DefaultTemplatePath(), store)
}
