package seeder

func Defaults() []Seeder {
	return []Seeder{
		ProjectsSeeder{},
		CatalogSkillsSeeder{},
	}
}
